package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/aio-strategy/internal/infra/auth/jwt"
	"github.com/bryanwahyu/aio-strategy/internal/logger"
)

var (
	tokenEmail string
	tokenTTL   time.Duration
)

// tokenCmd issues a token the server accepts when it runs with JWT_SECRET
var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Mint a development token from the shared JWT secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		v := jwt.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, logger.Log)
		tok, err := v.Issue(args[0], tokenEmail, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
