package main

import (
	"fmt"

	"notes-marketplace-api/internal/services"

	"github.com/spf13/cobra"
)

// Operators run these with database access, so the admin secret is not asked for.
func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(adminCreateCmd())
	cmd.AddCommand(adminDeleteCmd())
	return cmd
}

func adminCreateCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := services.NewAdminService().Register(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Admin email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func adminDeleteCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.NewAdminService().Delete(cmd.Context(), email); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted admin %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Admin email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
