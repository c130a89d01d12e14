package main

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"github.com/dtroode/audiograb-server/internal/token"
)

var cli struct {
	Subject string        `short:"s" default:"admin" help:"Token subject, recorded in the access log."`
	Secret  string        `env:"JWT_SECRET" required:"" help:"HMAC secret shared with the server."`
	TTL     time.Duration `name:"ttl" env:"JWT_ADMIN_TTL" default:"24h" help:"Token lifetime."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("admintoken"),
		kong.Description("Print an admin bearer token for DELETE /api/cleanup."),
	)

	tok, err := token.NewJWT(cli.Secret, cli.TTL).GenerateAdminToken(cli.Subject)
	kctx.FatalIfErrorf(err)

	fmt.Println(tok)
}
