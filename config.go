/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SPYFALL"

type Config struct {
	bind           string
	envFile        string
	maxNameLength  int
	port           int
	prefix         string
	profile        bool
	roundDuration  time.Duration
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	log zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	if c.roundDuration < time.Second {
		return fmt.Errorf("invalid round duration (must be at least 1s): %s", c.roundDuration)
	}
	if c.maxNameLength < 1 {
		return fmt.Errorf("invalid max name length (must be at least 1): %d", c.maxNameLength)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// roundSeconds is the room default duration handed to the game service.
func (c *Config) roundSeconds() int {
	return int(c.roundDuration / time.Second)
}

// loadEnvFile populates the process environment from a dotenv file, so its
// values are visible to viper. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// bindFlags overlays environment values onto any flag not set on the
// command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "spyfall",
		Short:         "Serves a realtime party game where one player is secretly the spy.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()

			envFile := cfg.envFile
			if !fs.Changed("env-file") {
				if p, ok := os.LookupEnv(envPrefix + "_ENV_FILE"); ok {
					envFile = p
				}
			}
			if err := loadEnvFile(envFile); err != nil {
				return err
			}

			bindFlags(v, fs)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.log = newLogger(cfg, os.Stderr)
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SPYFALL_BIND)")
	fs.StringVar(&cfg.envFile, "env-file", ".env", "dotenv file to read settings from, if present (env: SPYFALL_ENV_FILE)")
	fs.IntVar(&cfg.maxNameLength, "max-name-length", 12, "maximum length of a player name (env: SPYFALL_MAX_NAME_LENGTH)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SPYFALL_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: SPYFALL_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: SPYFALL_PROFILE)")
	fs.DurationVar(&cfg.roundDuration, "round-duration", 8*time.Minute, "default round length, restored after every round (env: SPYFALL_ROUND_DURATION)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are removed, 0 to keep forever (env: SPYFALL_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: SPYFALL_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: SPYFALL_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SPYFALL_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: SPYFALL_VERSION)")

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("spyfall v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
