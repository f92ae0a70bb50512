package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TagDock/internal/config"
	"TagDock/internal/drone"
	"TagDock/internal/drone/pathing"
	"TagDock/internal/maneuver"
	"TagDock/internal/schedule"
	"TagDock/internal/state"

	"github.com/benbjohnson/clock"
	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tagdock",
		Short: "Search for a landing tag, dock on it and land",
		Long: `tagdock flies an expanding search pattern through the shared command
channel, switches to docking corrections once the filtered tag detection
fires, commands a landing and keeps correcting until shutdown.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "config file (YAML, optional)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newRunCmd(), newPlanCmd())
	return root
}

func loadConfig(cmd *cobra.Command, extra map[string]*pflag.Flag) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	flags := map[string]*pflag.Flag{
		"logging.level": cmd.Flags().Lookup("log-level"),
	}
	for k, f := range extra {
		flags[k] = f
	}
	return config.Load(path, flags)
}

func newRunCmd() *cobra.Command {
	var noMAVLink bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the search-and-dock maneuver until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, map[string]*pflag.Flag{
				"mavlink.address": cmd.Flags().Lookup("mavlink-address"),
			})
			if err != nil {
				return err
			}
			if noMAVLink {
				cfg.MAVLink.Enabled = false
			}

			logger, err := newLogger(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = run(ctx, cfg, state.NewMemoryFrom(cfg.Seed()), clock.New(), logger.Sugar())
			if err != nil {
				logger.Error("tagdock stopped", zap.Error(err))
			}
			return err
		},
	}
	cmd.Flags().String("mavlink-address", "", "UDP host:port to listen on for the autopilot")
	cmd.Flags().BoolVar(&noMAVLink, "no-mavlink", false, "run without the flight-controller bridge")
	return cmd
}

// run wires the maneuver, and the MAVLink bridge when enabled, around store
// and blocks until ctx is done or a component fails.
func run(ctx context.Context, cfg config.Config, store state.Store, clk clock.Clock, logger *zap.SugaredLogger) error {
	ch := state.NewChannel(store, logger.Named("channel"))
	sleeper := schedule.New(clk)

	searchCfg, err := cfg.SearchConfig()
	if err != nil {
		return err
	}
	planner := pathing.NewPlanner(ch, sleeper, cfg.Control.RateHz, logger.Named("planner"))
	search := maneuver.NewSearch(planner, ch, sleeper, searchCfg, logger.Named("search"))
	docking := maneuver.NewDocking(ch, cfg.Control.YawGain, logger.Named("docking"))
	sup := maneuver.NewSupervisor(ch, search, docking, sleeper, cfg.SupervisorConfig(), logger.Named("supervisor"))

	var bridge *drone.Bridge
	var node *gomavlib.Node
	if cfg.MAVLink.Enabled {
		node, err = gomavlib.NewNode(gomavlib.NodeConf{
			Endpoints: []gomavlib.EndpointConf{
				gomavlib.EndpointUDPServer{Address: cfg.MAVLink.Address},
			},
			Dialect:     common.Dialect,
			OutVersion:  gomavlib.V2,
			OutSystemID: cfg.MAVLink.SystemID,
		})
		if err != nil {
			return fmt.Errorf("open mavlink node: %w", err)
		}
		defer node.Close()
		bridge = drone.NewBridge(node, ch, clk, cfg.BridgeConfig(), logger.Named("bridge"))
		if err := bridge.Prime(); err != nil {
			return fmt.Errorf("prime bridge keys: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	var supErr, bridgeErr error
	g.Go(func() error {
		supErr = sup.Run(gctx)
		return supErr
	})
	if bridge != nil {
		g.Go(func() error {
			bridgeErr = bridge.Run(gctx, node.Events())
			return bridgeErr
		})
	}

	_ = g.Wait()
	return multierr.Combine(supErr, bridgeErr)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}
	zc.Level = level
	return zc.Build()
}

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the configured search pattern leg by leg",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			searchCfg, err := cfg.SearchConfig()
			if err != nil {
				return err
			}
			return printPlan(cmd.OutOrStdout(), searchCfg, cfg.Control.RateHz)
		},
	}
}

func printPlan(w io.Writer, cfg maneuver.SearchConfig, rate float64) error {
	legs := pathing.Legs(cfg.Pattern)
	fmt.Fprintf(w, "pattern %s: %d legs at %.2f m/s, %.0f Hz\n", cfg.Pattern.Name(), len(legs), cfg.Speed, rate)

	var total time.Duration
	for i, leg := range legs {
		samples, err := pathing.Samples(leg.Start, leg.End, cfg.Speed, rate)
		if err != nil {
			return fmt.Errorf("leg %d: %w", i+1, err)
		}
		d := time.Duration(len(samples)) * schedule.Period(rate)
		total += d + cfg.LegPause
		fmt.Fprintf(w, "  leg %d: %v -> %v  %.2f m  %d samples  %v\n", i+1, leg.Start, leg.End, leg.Length(), len(samples), d)
	}
	fmt.Fprintf(w, "worst-case search time %v\n", total)
	return nil
}
