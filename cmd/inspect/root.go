package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/fire-tally-service/internal/adapter/aicc"
	"github.com/couchcryptid/fire-tally-service/internal/config"
	"github.com/couchcryptid/fire-tally-service/internal/domain"
	"github.com/couchcryptid/fire-tally-service/internal/observability"
	"github.com/couchcryptid/fire-tally-service/internal/style"
	"github.com/couchcryptid/fire-tally-service/internal/tally"
)

const (
	formatJSON = "json"
	formatText = "text"
)

type options struct {
	statewide string
	zoned     string
	insecure  bool
	timeout   time.Duration
	logLevel  string
	from      int
	to        int
	smooth    bool
	format    string
}

// app is what a subcommand needs once flags are parsed.
type app struct {
	svc    *tally.Service
	styles *style.Table
	out    io.Writer
	opts   *options
}

func newRootCmd(out io.Writer, metrics *observability.Metrics) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "inspect",
		Short:        "Inspect AICC daily tally data",
		Long:         "inspect fetches the statewide and by-protection daily tally feeds once and prints what the query layer sees.",
		SilenceUsage: true,
	}
	root.SetOut(out)

	f := root.PersistentFlags()
	f.StringVar(&opts.statewide, "statewide", "", "statewide feed URL or CSV path (default TALLY_DATA_URL)")
	f.StringVar(&opts.zoned, "zoned", "", "by-protection feed URL or CSV path (default TALLY_DATA_ZONES_URL)")
	f.BoolVar(&opts.insecure, "insecure", false, "skip TLS verification for the upstream host")
	f.DurationVar(&opts.timeout, "timeout", 0, "fetch timeout (default FETCH_TIMEOUT)")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	f.IntVar(&opts.from, "from", style.DefaultDayRange.Low, "first day of year (1-366)")
	f.IntVar(&opts.to, "to", style.DefaultDayRange.High, "last day of year (1-366)")
	f.BoolVar(&opts.smooth, "smooth", false, "apply LOESS smoothing to season series")
	f.StringVar(&opts.format, "format", formatJSON, "output format: json or text")

	build := func(cmd *cobra.Command) (*app, error) {
		if opts.format != formatJSON && opts.format != formatText {
			return nil, fmt.Errorf("unknown format %q", opts.format)
		}
		svc, err := opts.service(metrics)
		if err != nil {
			return nil, err
		}
		styles, err := style.Load()
		if err != nil {
			return nil, err
		}
		return &app{svc: svc, styles: styles, out: cmd.OutOrStdout(), opts: opts}, nil
	}

	root.AddCommand(
		newSeasonsCmd(build),
		newZonesCmd(),
		newStatewideCmd(build),
		newZoneCmd(build),
		newYearCmd(build),
	)
	return root
}

// service wires a Service over a fresh cache using env config with flag
// overrides.
func (o *options) service(metrics *observability.Metrics) (*tally.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.statewide != "" {
		cfg.StatewideURL = o.statewide
	}
	if o.zoned != "" {
		cfg.ZonedURL = o.zoned
	}
	if o.insecure {
		cfg.InsecureTLS = true
	}
	if o.timeout > 0 {
		cfg.FetchTimeout = o.timeout
	}
	cfg.LogLevel = o.logLevel
	cfg.LogFormat = "text"

	logger := observability.NewLogger(cfg)
	loader := tally.NewFeedLoader(aicc.NewClient(cfg, metrics, logger), nil, metrics, logger)
	cache := tally.NewCache(loader, cfg.CacheTTL, metrics, logger, tally.WithFetchTimeout(cfg.FetchTimeout))
	return tally.NewService(cache), nil
}

func (o *options) dayRange() domain.DayRange {
	return domain.DayRange{Low: o.from, High: o.to}
}

func newZonesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List protection zone codes and names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), domain.KnownZones())
		},
	}
}

func newSeasonsCmd(build func(*cobra.Command) (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "seasons",
		Short: "List fire seasons present in the zoned feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := build(cmd)
			if err != nil {
				return err
			}
			seasons, err := a.svc.AvailableSeasons(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(a.out, seasons)
		},
	}
}
