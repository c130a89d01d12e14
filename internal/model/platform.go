package model

// PlatformStatus describes the availability of a platform.
type PlatformStatus string

const (
	PlatformActive     PlatformStatus = "active"
	PlatformComingSoon PlatformStatus = "coming_soon"
	PlatformPlanned    PlatformStatus = "planned"
)

// Platform is a media source the service knows about.
type Platform struct {
	Name             string
	Domains          []string
	Status           PlatformStatus
	EstimatedRelease string
	Features         []string
}
