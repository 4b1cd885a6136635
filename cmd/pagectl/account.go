package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagName     string
	flagEmail    string
	flagPassword string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Register creates a new account. The password may also be supplied in
CATATAN_PASSWORD to keep it out of shell history.

Example:
  pagectl register --name Ada --email ada@example.com --password s3cret`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := api.Register(cmd.Context(), flagName, flagEmail, password())
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and print an access token",
	Long: `Login prints an access token on stdout. Export it as CATATAN_TOKEN for
the other commands.

Example:
  export CATATAN_TOKEN=$(pagectl login --email ada@example.com --password s3cret)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := api.Login(cmd.Context(), flagEmail, password())
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.AccessToken)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the current access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := credential()
		if err != nil {
			return err
		}
		if err := api.Logout(cmd.Context(), cred); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := credential()
		if err != nil {
			return err
		}
		me, err := api.Me(cmd.Context(), cred)
		if err != nil {
			return fmt.Errorf("whoami: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", me.Name, me.Email, me.ID)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&flagName, "name", "", "display name")
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVar(&flagEmail, "email", "", "account email")
		c.Flags().StringVar(&flagPassword, "password", "", "account password (env CATATAN_PASSWORD)")
		_ = c.MarkFlagRequired("email")
	}
}

func password() string {
	if flagPassword != "" {
		return flagPassword
	}
	return os.Getenv("CATATAN_PASSWORD")
}
