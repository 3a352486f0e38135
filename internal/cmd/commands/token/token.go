package token

import (
	"flag"
	"fmt"
	"time"

	"github.com/jamesgeorge007/postwoman/internal/api"
	"github.com/jamesgeorge007/postwoman/internal/cmd/base"
)

type Command struct {
	*base.Command

	flagConfig  string
	flagSecret  string
	flagIssuer  string
	flagSubject string
	flagTTL     time.Duration
}

func (c *Command) Synopsis() string {
	return "Mint a bearer token for the sync API"
}

func (c *Command) Help() string {
	return `Usage: postwoman token -subject=<name> [options]

  Mint an HS256 token accepted by "postwoman serve". The secret and issuer
  come from the server block of the config file unless given as flags.` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(flag.NewFlagSet("token", flag.ContinueOnError))
	f.ConfigVar(&c.flagConfig)
	f.StringVar(&c.flagSecret, "secret", "", "Signing secret. Overrides server.jwt_secret.")
	f.StringVar(&c.flagIssuer, "issuer", "", "Token issuer. Overrides server.jwt_issuer.")
	f.StringVar(&c.flagSubject, "subject", "", "(Required) Token subject.")
	f.DurationVar(&c.flagTTL, "ttl", 24*time.Hour, "Token lifetime.")
	return f
}

func (c *Command) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		c.UI.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagSubject == "" {
		c.UI.Error("subject flag is required")
		return 1
	}
	if c.flagTTL <= 0 {
		c.UI.Error("ttl must be positive")
		return 1
	}

	secret, issuer := c.flagSecret, c.flagIssuer
	if c.flagConfig != "" {
		cfg, err := c.LoadConfig(c.flagConfig)
		if err != nil {
			c.UI.Error(err.Error())
			return 1
		}
		if cfg.Server != nil {
			if secret == "" {
				secret = cfg.Server.JWTSecret
			}
			if issuer == "" {
				issuer = cfg.Server.JWTIssuer
			}
		}
	}
	if secret == "" {
		c.UI.Error("no signing secret; pass -secret or set server.jwt_secret")
		return 1
	}

	tok, err := api.MintToken(secret, issuer, c.flagSubject, c.flagTTL)
	if err != nil {
		c.UI.Error(fmt.Sprintf("error minting token: %v", err))
		return 1
	}
	c.UI.Output(tok)
	return 0
}
