package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/yourusername/galoya-api/internal/password"
	"github.com/yourusername/galoya-api/internal/users"
)

func newCreateUserCmd(e *env) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an administrator account",
		Long: `Create an administrator account. The password is read from the terminal
without echo and stored as a salted hash.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username = strings.TrimSpace(username)
			if username == "" {
				return oops.Code("INVALID_INPUT").Errorf("--username is required")
			}

			pass, err := e.promptPassword(cmd)
			if err != nil {
				return err
			}

			cfg, logger, storage, err := e.setup(cmd.Context(), true)
			if err != nil {
				return oops.Code("STORAGE_FAILED").Wrap(err)
			}
			defer storage.Close()
			defer func() { _ = logger.Sync() }()

			user, err := users.Provision(cmd.Context(), storage.Users, password.NewHasher(cfg.BcryptCost), username, pass)
			switch {
			case errors.Is(err, users.ErrUsernameTaken):
				return oops.Code("USERNAME_TAKEN").Errorf("user %q already exists", username)
			case errors.Is(err, users.ErrWeakPassword):
				return oops.Code("INVALID_INPUT").Wrap(err)
			case err != nil:
				return oops.Code("CREATE_USER_FAILED").Wrap(err)
			}

			cmd.Printf("Created user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "administrator username")
	return cmd
}

// promptPassword はパスワードを2回入力させ、一致を確認します。
func (e *env) promptPassword(cmd *cobra.Command) (string, error) {
	read := func(prompt string) (string, error) {
		fmt.Fprint(cmd.OutOrStdout(), prompt)
		raw, err := e.readPassword(e.stdinFD)
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", oops.Code("INVALID_INPUT").Wrap(err)
		}
		return string(raw), nil
	}

	first, err := read("Password: ")
	if err != nil {
		return "", err
	}
	second, err := read("Confirm password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", oops.Code("INVALID_INPUT").Errorf("passwords do not match")
	}
	return first, nil
}
