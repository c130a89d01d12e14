package model

// TokenManager issues and validates admin bearer tokens.
type TokenManager interface {
	GenerateAdminToken(subject string) (string, error)
	ParseAdminToken(token string) (subject string, err error)
}
