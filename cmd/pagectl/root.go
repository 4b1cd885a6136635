package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/catatan/catatan/internal/autosave"
	"github.com/catatan/catatan/internal/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	cfgKeyServer = "server"
	cfgKeyToken  = "token"
	cfgKeyIdleMS = "idle_ms"

	defaultServer = "http://localhost:4000"
)

var errNoToken = errors.New("not signed in: pass --token or set CATATAN_TOKEN (see `pagectl login`)")

var (
	cfg *viper.Viper
	api *client.Client
)

var rootCmd = &cobra.Command{
	Use:          "pagectl",
	Short:        "pagectl manages pages on a catatan server",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = v
		api = client.New(cfg.GetString(cfgKeyServer))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("server", defaultServer, "catatan server base URL (env CATATAN_SERVER)")
	rootCmd.PersistentFlags().String("token", "", "access token from `pagectl login` (env CATATAN_TOKEN)")
	rootCmd.PersistentFlags().Int("idle", int(autosave.DefaultIdle/time.Millisecond), "autosave idle window in milliseconds (env AUTOSAVE_IDLE_MS)")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(listCmd, newCmd, showCmd, editCmd, rmCmd)
	rootCmd.AddCommand(trashCmd, restoreCmd, purgeCmd)
}

// loadConfig layers flags over environment over defaults.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyServer, defaultServer)
	v.SetDefault(cfgKeyIdleMS, int(autosave.DefaultIdle/time.Millisecond))

	binds := map[string][2]string{
		cfgKeyServer: {"server", "CATATAN_SERVER"},
		cfgKeyToken:  {"token", "CATATAN_TOKEN"},
		cfgKeyIdleMS: {"idle", "AUTOSAVE_IDLE_MS"},
	}
	for key, b := range binds {
		if err := v.BindEnv(key, b[1]); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", b[1], err)
		}
		if f := cmd.Root().PersistentFlags().Lookup(b[0]); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag --%s: %w", b[0], err)
			}
		}
	}
	if v.GetInt(cfgKeyIdleMS) <= 0 {
		return nil, fmt.Errorf("idle window must be positive, got %dms", v.GetInt(cfgKeyIdleMS))
	}
	return v, nil
}

// credential returns the configured access token.
func credential() (client.Credential, error) {
	tok := cfg.GetString(cfgKeyToken)
	if tok == "" {
		return "", errNoToken
	}
	return client.Credential(tok), nil
}

func idleWindow() time.Duration {
	return time.Duration(cfg.GetInt(cfgKeyIdleMS)) * time.Millisecond
}
