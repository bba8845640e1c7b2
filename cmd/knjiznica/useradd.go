package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/erazemk/knjiznica/internal/config"
	"github.com/erazemk/knjiznica/internal/db"
	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

func newUseraddCmd(cfg *config.Config) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "useradd <username> <email>",
		Short: "Create an account, prompting for its password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !model.ValidRole(role) {
				return fmt.Errorf("unknown role %q (want %s or %s)", role, model.RoleAdmin, model.RolePatron)
			}

			password, err := promptPassword()
			if err != nil {
				return err
			}

			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()

			if err := db.Migrate(database); err != nil {
				return fmt.Errorf("migrating database: %w", err)
			}

			user, err := store.RegisterUserWithRole(cmd.Context(), database, args[0], args[1], password, role)
			if err != nil {
				return err
			}

			fmt.Printf("Created %s account %q (id %d).\n", user.Role, user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", model.RolePatron, "account role: admin or patron")
	return cmd
}

// promptPassword reads the password twice without echo on a terminal, or a
// single line from piped stdin.
func promptPassword() (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	first, err := readPassword(fd, "Password: ")
	if err != nil {
		return "", err
	}
	second, err := readPassword(fd, "Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passwords do not match")
	}
	return first, nil
}

func readPassword(fd int, prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}
