package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/TechGeek001/jhu-capstone/pkg/lifecycle"
	"github.com/TechGeek001/jhu-capstone/pkg/metrics"
	"github.com/TechGeek001/jhu-capstone/pkg/transmitter"
	"github.com/TechGeek001/jhu-capstone/pkg/util"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Configuration keys. Each is also a flag name and, upper cased with the RID_ prefix, an environment variable.
const (
	cfgConfigFile   = "config"
	cfgGPSAddr      = "gps-addr"
	cfgHostapdCtrl  = "hostapd-ctrl"
	cfgHCIDevice    = "hci-device"
	cfgMetricsAddr  = "metrics-addr"
	cfgLogLevel     = "log-level"
	cfgRepeat       = "repeat"
	cfgSessionID    = "session-id"
	cfgMessageDelay = "message-delay"
	cfgPackDelay    = "pack-delay"
	cfgPackRepeats  = "pack-repeats"
)

const envPrefix = "RID"

const (
	packsFlag = 'p'
	gpsFlag   = 'g'
)

var errPackRepeats = errors.New("pack-repeats must be at least 1")

const longHelp = `Broadcasts signed Remote ID messages over Wi-Fi Beacon and Bluetooth.

Options:
  b Enable Wi-Fi Beacon transmission
  l Enable Bluetooth 4 Legacy Advertising transmission
    using the non-Extended Advertising HCI API commands
  4 Enable Bluetooth 4 Legacy Advertising transmission
    using the Extended Advertising HCI API commands
  5 Enable Bluetooth 5 Long Range + Extended Advertising transmission
  p Use message packs instead of single messages
  g Use gpsd to dynamically update location messages after each loop of messages

Wi-Fi Beacon transmit only works while hostapd runs with the beacon configuration.
Disconnect from all Wi-Fi networks before starting Wi-Fi Beacon transmission.

If terminated abnormally, Beacon and Bluetooth broadcasts can remain on.
To stop Beacon broadcast, stop the hostapd instance.
To stop Bluetooth, use "btmgmt power off" and then "btmgmt power on".`

// Runner executes a prepared coordinator
type Runner func(ctx context.Context, c *lifecycle.Coordinator) error

// App is the transmit command line. The zero value talks to real hardware.
type App struct {
	Out io.Writer
	Err io.Writer
	// Run defaults to Coordinator.Run
	Run Runner
	// Logger replaces the logger built from --log-level
	Logger *zap.Logger
	// NewFactory defaults to lifecycle.NewFactory
	NewFactory func(opts lifecycle.Options, logger *zap.Logger) lifecycle.Factory
}

// Execute runs the transmit command line against real hardware and returns the exit status
func Execute(ctx context.Context, args []string) int {
	return (&App{}).Execute(ctx, args)
}

// Execute parses args, runs the transmitter and returns the exit status
func (a *App) Execute(ctx context.Context, args []string) int {
	cmd, err := a.Command()
	if err == nil {
		cmd.SetArgs(args)
		err = cmd.ExecuteContext(ctx)
	}
	if err != nil {
		fmt.Fprintf(a.errWriter(), "Error: %v\n", err)
		return 1
	}
	return 0
}

// Command builds the cobra root command with its flags bound into a fresh viper store
func (a *App) Command() (*cobra.Command, error) {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "transmit [b|l|4|5|p|g]...",
		Short:         "Broadcast signed Remote ID messages",
		Long:          longHelp,
		Example:       "  transmit b p\n  transmit 5 p g --gps-addr localhost:2947",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, v, args)
		},
	}
	cmd.SetOut(a.out())
	cmd.SetErr(a.errWriter())

	addFlags(cmd.Flags())
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = errors.Wrap(err, "BindPFlag issue")
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return cmd, nil
}

func addFlags(fs *pflag.FlagSet) {
	fs.String(cfgConfigFile, "", "Configuration file (TOML, YAML or JSON)")
	fs.String(cfgGPSAddr, util.DefaultGPSDAddr, "gpsd address")
	fs.String(cfgHostapdCtrl, util.DefaultHostapdCtrl, "hostapd control socket of the beacon interface")
	fs.Int(cfgHCIDevice, 0, "HCI device index of the bluetooth controller")
	fs.String(cfgMetricsAddr, "", "Serve prometheus metrics on this address")
	fs.String(cfgLogLevel, "info", "Log level (debug, info, warn, error)")
	fs.Bool(cfgRepeat, false, "Keep transmitting the static record until interrupted")
	fs.String(cfgSessionID, "", `Session id for the second basic id, "random" generates one`)
	fs.Duration(cfgMessageDelay, util.MessageDelay, "Pause after each single message")
	fs.Duration(cfgPackDelay, util.PackDelay, "Pause after each message pack")
	fs.Int(cfgPackRepeats, util.PackRepeats, "Message packs per transmission cycle")
}

// ParseArgs maps the positional letters to a transmission config.
// Only the first character of each argument counts and unknown letters are ignored.
func ParseArgs(args []string) *transmitter.Config {
	cfg := transmitter.NewConfig()
	for _, arg := range args {
		if arg == "" {
			continue
		}
		switch f := arg[0]; f {
		case packsFlag:
			cfg.UsePacks = true
		case gpsFlag:
			cfg.UseGPS = true
		default:
			if k, ok := transmitter.KindFromFlag(f); ok {
				cfg.Enable(k)
			}
		}
	}
	return cfg
}

func (a *App) run(cmd *cobra.Command, v *viper.Viper, args []string) error {
	if file := v.GetString(cfgConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrap(err, "config file issue")
		}
	}

	cfg := ParseArgs(args)
	if cfg.Transports.Cardinality() == 0 {
		return cmd.Help()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.Repeat = v.GetBool(cfgRepeat)
	cfg.MessageDelay = v.GetDuration(cfgMessageDelay)
	cfg.PackDelay = v.GetDuration(cfgPackDelay)
	cfg.PackRepeats = v.GetInt(cfgPackRepeats)
	if cfg.PackRepeats < 1 {
		return errPackRepeats
	}

	logger, err := a.logger(v.GetString(cfgLogLevel))
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	opts := lifecycle.Options{
		HostapdCtrl: v.GetString(cfgHostapdCtrl),
		HCIDevice:   v.GetInt(cfgHCIDevice),
		GPSAddr:     v.GetString(cfgGPSAddr),
	}
	newFactory := a.NewFactory
	if newFactory == nil {
		newFactory = lifecycle.NewFactory
	}
	coordinator := &lifecycle.Coordinator{
		Config:      cfg,
		Factory:     newFactory(opts, logger),
		Logger:      logger,
		MetricsAddr: v.GetString(cfgMetricsAddr),
		SessionID:   v.GetString(cfgSessionID),
	}
	if coordinator.MetricsAddr != "" {
		collector, err := metrics.NewCollector(prometheus.NewRegistry())
		if err != nil {
			return err
		}
		coordinator.Metrics = collector
	}

	logger.Info("starting transmitter",
		zap.Stringers("transports", cfg.Kinds()),
		zap.Bool("packs", cfg.UsePacks),
		zap.Bool("gps", cfg.UseGPS))
	run := a.Run
	if run == nil {
		run = func(ctx context.Context, c *lifecycle.Coordinator) error { return c.Run(ctx) }
	}
	return run(cmd.Context(), coordinator)
}

func (a *App) logger(level string) (*zap.Logger, error) {
	if a.Logger != nil {
		return a.Logger, nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "log level issue")
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

func (a *App) errWriter() io.Writer {
	if a.Err != nil {
		return a.Err
	}
	return os.Stderr
}
