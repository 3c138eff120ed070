package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd(configPath *string) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign the station in",
		Long:  "Signs in against the remote service and persists the session for later commands such as lookup.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			password, err := readPassword(cmd)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.sessions.Login(cmd.Context(), strings.TrimSpace(email), password) {
				return errors.New("invalid email or password")
			}
			current, _ := a.sessions.Current()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s until %s\n", current.User.DisplayName(), current.ExpiresAt.Local().Format("02/01/2006 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "operator email")
	return cmd
}

func newLogoutCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign the station out and forget the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			a.sessions.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newSessionCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the persisted session and time remaining",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			current, ok := a.sessions.Current()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No active session")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User:      %s <%s>\nExpires:   %s\nRemaining: %s\n",
				current.User.DisplayName(), current.User.Email,
				current.ExpiresAt.Local().Format("02/01/2006 15:04"), a.sessions.FormatRemaining())
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal, and otherwise reads one
// line so the password can be piped in.
func readPassword(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}
