package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/deemkeen/postbox/request"
	"github.com/deemkeen/postbox/view"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in")

func newLoginCmd(c *Cli) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if username == "" {
				return errors.New("--username is required")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "password: ")
				line, rerr := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if rerr != nil && line == "" {
					return fmt.Errorf("reading password: %w", rerr)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			a, _, err := c.open()
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			login := view.NewLogin(a.Env)
			if err := run(cmd.Context(), a, func() *request.Handle {
				return login.Submit(username, password)
			}); err != nil {
				return err
			}

			s := snapshot(a)
			if !s.Session.LoggedIn {
				if lastFlash(s) == view.MsgLoginFailed {
					return errors.New(view.MsgLoginFailed)
				}
				return errors.New("login failed, see the log for details")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (@%s)\n", view.MsgLoggedIn, s.Session.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when empty)")
	return cmd
}

func newLogoutCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, _, err := c.open()
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			a.Do(func() { view.Logout(a.Env) })
			fmt.Fprintln(cmd.OutOrStdout(), lastFlash(snapshot(a)))
			return nil
		},
	}
}

func newCheckCmd(c *Cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the stored session against the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a, _, err := c.open()
			if err != nil {
				return err
			}
			defer closeApp(a, &err)

			if err := wait(cmd.Context(), a.Start()); err != nil {
				return err
			}

			s := snapshot(a)
			if !s.Session.LoggedIn {
				if msg := lastFlash(s); msg != "" {
					fmt.Fprintln(cmd.OutOrStdout(), msg)
				}
				return errNotLoggedIn
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as @%s\n", s.Session.Username)
			return nil
		},
	}
}
