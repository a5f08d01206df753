package main

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

type tokenOutput struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

// newTokenCmd issues an access token for scripting against the API.
func newTokenCmd() *cobra.Command {
	var (
		userID, companyID, role string
		ttl                     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with JWT_SECRET_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret).IssueAccessToken(userID, companyID, role, ttl)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tokenOutput{AccessToken: token, ExpiresAt: expiresAt})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "payrollctl", "User ID claim")
	cmd.Flags().StringVar(&companyID, "company", "", "Company ID claim (required)")
	cmd.Flags().StringVar(&role, "role", middleware.RoleManager, "Role claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}
