package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/church-events-api/internal/models"
	"github.com/noah-isme/church-events-api/internal/repository"
	"github.com/noah-isme/church-events-api/internal/service"
	"github.com/noah-isme/church-events-api/pkg/database"
)

func newCreateAdminCmd(rt *runtime) *cobra.Command {
	var (
		email    string
		fullName string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator or reset an existing one",
		Long: `Create an administrator account. When the email already exists its
password is reset, its sessions are revoked and the account is reactivated.

The password is read from ADMIN_PASSWORD so it never appears in shell history.

Examples:
  ADMIN_PASSWORD=s3cret adminctl create-admin --email office@example.org --name "Parish Office"
  ADMIN_PASSWORD=s3cret adminctl create-admin --email viewer@example.org --role VIEWER`,
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("ADMIN_PASSWORD")
			if password == "" {
				return fmt.Errorf("ADMIN_PASSWORD must be set")
			}
			userRole := models.UserRole(strings.ToUpper(role))
			if !userRole.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}

			db, err := database.NewPostgres(cmd.Context(), rt.cfg.Database)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer db.Close()

			auth := service.NewAuthService(repository.NewUserRepository(db), service.NewValidator(), rt.logger, service.AuthConfig{
				AccessTokenSecret: rt.cfg.JWT.Secret,
				Issuer:            rt.cfg.JWT.Issuer,
			})
			user, created, err := auth.EnsureAdmin(cmd.Context(), email, password, fullName, userRole)
			if err != nil {
				return err
			}
			verb := "updated"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&fullName, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "SUPERADMIN, ADMIN or VIEWER")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
