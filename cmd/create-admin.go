package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/trainlog/trainlog/internal/auth"
)

var createAdminFlags struct {
	Email    string
	Password string
	Name     string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing one",
	Long: `Create a user with the admin role. If the email is already registered,
the account is promoted to admin and its password is reset.`,
	Example: `trainlog create-admin --email coach@example.com --password s3cret --name "Head Coach"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		db := mustOpenDatabase(cfg)
		defer db.Close() //nolint: errcheck

		svc := auth.NewService(db, auth.NewTokenManager(cfg.Auth))
		user, created, err := svc.EnsureAdmin(cmd.Context(), createAdminFlags.Email, createAdminFlags.Password, createAdminFlags.Name)
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}

		if created {
			log.Info("admin account created", "email", user.Email, "id", user.ID)
		} else {
			log.Info("existing account promoted to admin", "email", user.Email, "id", user.ID)
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&createAdminFlags.Email, "email", "", "Email address of the admin")
	createAdminCmd.Flags().StringVar(&createAdminFlags.Password, "password", "", "Password of the admin")
	createAdminCmd.Flags().StringVar(&createAdminFlags.Name, "name", "", "Display name of the admin (defaults to Admin for new accounts, existing names are kept)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}
