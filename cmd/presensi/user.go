package main

import (
	"fmt"

	"github.com/immxrtalbeast/presensi/internal/database"
	"github.com/immxrtalbeast/presensi/internal/repository"
	"github.com/immxrtalbeast/presensi/internal/service"
	"github.com/spf13/cobra"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage member accounts",
	}
	cmd.AddCommand(userCreateCommand())
	return cmd
}

// Accounts are provisioned by an operator; the API has no sign-up.
func userCreateCommand() *cobra.Command {
	var in service.NewUserInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a member account",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(cfg.Database, log)
			if err != nil {
				return fmt.Errorf("failed to open db: %w", err)
			}
			defer database.Close(db)

			users := service.NewUserService(repository.NewGormUserRepository(db), nil, cfg.Auth.BcryptCost, log)
			user, err := users.CreateUser(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s id=%s\n", user.NIM, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.NIM, "nim", "", "student number used to log in")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&in.Divisi, "divisi", "", "division")
	cmd.Flags().BoolVar(&in.CanCreateMeeting, "can-create-meeting", false, "allow the user to create meetings")
	_ = cmd.MarkFlagRequired("nim")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
