package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind         string
	port         int
	prefix       string
	profile      bool
	sensorSecret string
	tlsCert      string
	tlsKey       string
	verbose      bool

	endpoint string
	swatch   bool

	red     int
	green   int
	blue    int
	clear   int
	gamma   bool
	fromRaw bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sensorSecret == "" {
		return errors.New("--sensor-secret must be set, or readings will never be broadcast")
	}
	return nil
}

func (c *Config) validateEndpoint() error {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.endpoint, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("invalid endpoint %q (scheme must be ws or wss)", c.endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q (missing host)", c.endpoint)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// bindFlags lets every flag in fs fall back to its NUNWAY_* environment
// variable when not given on the command line.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("NUNWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

func newCmd(cfg *Config) *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:           "nunway",
		Short:         "Live color feed: a WebSocket hub, a watcher that paints every color it receives, and a sensor publisher.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
	}

	pfs := cmd.PersistentFlags()
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: NUNWAY_VERBOSE)")
	bindFlags(v, pfs)

	cmd.AddCommand(
		newServeCmd(cfg),
		newWatchCmd(cfg),
		newPublishCmd(cfg),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("nunway v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newServeCmd(cfg *Config) *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the hub: accept sensor readings, broadcast colors, serve the color page.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServeHub(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: NUNWAY_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 9000, "port to listen on (env: NUNWAY_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: NUNWAY_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: NUNWAY_PROFILE)")
	fs.StringVar(&cfg.sensorSecret, "sensor-secret", "", "id that marks a message as a sensor reading (env: NUNWAY_SENSOR_SECRET)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: NUNWAY_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: NUNWAY_TLS_KEY)")
	bindFlags(v, fs)

	return cmd
}

func newWatchCmd(cfg *Config) *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Connect to a hub once and paint every color it sends.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateEndpoint(); err != nil {
				return err
			}
			return newWatcher(cfg.endpoint, newConsoleDisplay(os.Stdout, cfg.swatch)).Run(cmd.Context())
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.endpoint, "endpoint", "e", "ws://127.0.0.1:9000/ws", "hub WebSocket address (env: NUNWAY_ENDPOINT)")
	fs.BoolVar(&cfg.swatch, "swatch", true, "paint a 24-bit terminal swatch for each color (env: NUNWAY_SWATCH)")
	bindFlags(v, fs)

	return cmd
}

func newPublishCmd(cfg *Config) *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Send one sensor reading to a hub.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateEndpoint(); err != nil {
				return err
			}
			if cfg.sensorSecret == "" {
				return errors.New("--sensor-secret must be set")
			}
			return Publish(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.endpoint, "endpoint", "e", "ws://127.0.0.1:9000/ws", "hub WebSocket address (env: NUNWAY_ENDPOINT)")
	fs.StringVar(&cfg.sensorSecret, "sensor-secret", "", "id sent with the reading (env: NUNWAY_SENSOR_SECRET)")
	fs.IntVarP(&cfg.red, "red", "r", 0, "red channel (env: NUNWAY_RED)")
	fs.IntVarP(&cfg.green, "green", "g", 0, "green channel (env: NUNWAY_GREEN)")
	fs.IntVarP(&cfg.blue, "blue", "b", 0, "blue channel (env: NUNWAY_BLUE)")
	fs.IntVarP(&cfg.clear, "clear", "c", 0, "clear channel (env: NUNWAY_CLEAR)")
	fs.BoolVar(&cfg.fromRaw, "from-raw", false, "treat channels as raw counts and scale them against --clear (env: NUNWAY_FROM_RAW)")
	fs.BoolVar(&cfg.gamma, "gamma", false, "apply 2.5 gamma correction (env: NUNWAY_GAMMA)")
	bindFlags(v, fs)

	return cmd
}
