package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"investment-research/auth"
	"investment-research/models"
)

func userCmd(cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API users",
	}

	var password, role, email string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errors.New("--password is required")
			}
			ctx := cmd.Context()
			a, err := loadApp(ctx, *cfgFile, true)
			if err != nil {
				return err
			}
			defer a.close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			u := &models.User{
				Username:     args[0],
				Email:        email,
				PasswordHash: hash,
				Role:         role,
				IsActive:     true,
			}
			if err := a.store.CreateUser(ctx, u); err != nil {
				return err
			}
			fmt.Printf("Created user %s (%s) id=%s\n", u.Username, u.Role, u.ID)
			return nil
		},
	}
	add.Flags().StringVar(&password, "password", "", "login password")
	add.Flags().StringVar(&role, "role", "user", "user role")
	add.Flags().StringVar(&email, "email", "", "contact email")

	cmd.AddCommand(add)
	return cmd
}
