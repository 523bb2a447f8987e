package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/blescan/internal/devicefactory"
	"github.com/srg/blescan/pkg/config"
	"github.com/srg/blescan/scanner"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for BLE advertisements",
	Long: `Scan for Bluetooth Low Energy advertisements and print every report
with its decoded AD structures.

Settings are read from the defaults, then from --config, then from the flags
given on the command line. A --duration of 0 scans until Ctrl+C.`,
	Example: `  blescan scan --mode passive --interval 100 --window 50
  blescan scan -d 0 --services 180d --format json
  blescan scan --config ./blescan.yaml --no-duplicates=false`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var (
	scanConfigPath  string
	scanMode        string
	scanInterval    int
	scanWindow      int
	scanDuration    time.Duration
	scanFormat      string
	scanServices    []string
	scanAllowList   []string
	scanBlockList   []string
	scanNoDuplicate bool
	scanLogReports  bool
	scanVerbose     bool
)

func init() {
	addScanFlags(scanCmd)
}

// addScanFlags (re)registers the scan flags; tests call it to reset flag state.
func addScanFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig()

	cmd.Flags().StringVarP(&scanConfigPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().StringVarP(&scanMode, "mode", "m", defaults.Scan.Mode, "Scan mode (passive, active)")
	cmd.Flags().IntVar(&scanInterval, "interval", defaults.Scan.IntervalMs, "Scan interval in ms (3-10240)")
	cmd.Flags().IntVar(&scanWindow, "window", defaults.Scan.WindowMs, "Scan window in ms (3-10240, at most the interval)")
	cmd.Flags().DurationVarP(&scanDuration, "duration", "d", defaults.Scan.Duration, "Scan duration (0 for indefinite)")
	cmd.Flags().StringVarP(&scanFormat, "format", "f", defaults.OutputFormat, "Output format (text, json)")
	cmd.Flags().StringSliceVarP(&scanServices, "services", "s", nil, "Only show devices advertising these service UUIDs")
	cmd.Flags().StringSliceVar(&scanAllowList, "allow", nil, "Only show devices with these addresses")
	cmd.Flags().StringSliceVar(&scanBlockList, "block", nil, "Hide devices with these addresses")
	cmd.Flags().BoolVar(&scanNoDuplicate, "no-duplicates", defaults.Scan.FilterDuplicates, "Let the radio filter duplicate advertisements")
	cmd.Flags().BoolVar(&scanLogReports, "log-reports", defaults.Scan.LogReports, "Log every report at info level")
	cmd.Flags().BoolVar(&scanVerbose, "verbose", false, "Enable debug logging")
}

// loadScanConfig layers the flags the user actually set over the config file.
func loadScanConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(scanConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Scan.Mode = scanMode
	}
	if flags.Changed("interval") {
		cfg.Scan.IntervalMs = scanInterval
	}
	if flags.Changed("window") {
		cfg.Scan.WindowMs = scanWindow
	}
	if flags.Changed("duration") {
		cfg.Scan.Duration = scanDuration
	}
	if flags.Changed("format") {
		cfg.OutputFormat = scanFormat
	}
	if flags.Changed("services") {
		cfg.Scan.ServiceUUIDs = scanServices
	}
	if flags.Changed("allow") {
		cfg.Scan.AllowList = scanAllowList
	}
	if flags.Changed("block") {
		cfg.Scan.BlockList = scanBlockList
	}
	if flags.Changed("no-duplicates") {
		cfg.Scan.FilterDuplicates = scanNoDuplicate
	}
	if flags.Changed("log-reports") {
		cfg.Scan.LogReports = scanLogReports
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadScanConfig(cmd)
	if err != nil {
		return err
	}

	// Without flags the logger stays silent unless a config file names a
	// level or report logging needs info entries.
	fallback := ""
	switch {
	case scanConfigPath != "":
		fallback = cfg.LogLevel
	case cfg.Scan.LogReports:
		fallback = "info"
	}
	logger, err := configureLogger(cmd, "verbose", fallback)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	radio, err := devicefactory.RadioFactory(logger)
	if err != nil {
		return fmt.Errorf("failed to create BLE radio: %w", err)
	}
	if closer, ok := radio.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.WithError(err).Warn("Failed to release BLE radio")
			}
		}()
	}

	ctrl := scanner.NewController(radio, logger, scanner.WithReportLogging(cfg.Scan.LogReports))
	if err := cfg.Apply(ctrl); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return scanLoop(ctx, ctrl, cfg, newReportPrinter(cmd.OutOrStdout(), cfg.OutputFormat), cmd.ErrOrStderr(), logger)
}

// scanLoop runs one scan session, printing events until the duration elapses
// or ctx is cancelled, then prints the events still buffered.
func scanLoop(ctx context.Context, ctrl *scanner.Controller, cfg *config.Config, out *reportPrinter, status io.Writer, logger *logrus.Logger) error {
	if err := ctrl.Start(); err != nil {
		return err
	}
	started := time.Now()

	var deadline <-chan time.Time
	if cfg.Scan.Duration > 0 {
		timer := time.NewTimer(cfg.Scan.Duration)
		defer timer.Stop()
		deadline = timer.C
	}

	// The status line only shows when reports go elsewhere, e.g. to a file.
	var progress *ProgressPrinter
	if cfg.OutputFormat == "text" && isTerminal(status) && !isTerminal(out.w) {
		progress = NewProgressPrinter(status, "Scanning", cfg.Scan.Duration, ctrl.PeerCount)
		progress.Start()
		defer progress.Stop()
	}

	var printErr error
	emit := func(ev scanner.ReportEvent) {
		if printErr == nil {
			printErr = out.PrintEvent(ev)
		}
	}

loop:
	for {
		select {
		case ev := <-ctrl.Events():
			emit(ev)
		case <-deadline:
			break loop
		case <-ctx.Done():
			logger.Info("Scan interrupted")
			break loop
		}
	}

	stopErr := ctrl.Stop()
	if progress != nil {
		progress.Stop()
	}

	for drained := false; !drained; {
		select {
		case ev := <-ctrl.Events():
			emit(ev)
		default:
			drained = true
		}
	}

	if err := errors.Join(stopErr, printErr); err != nil {
		return err
	}
	logger.WithField("elapsed", time.Since(started)).Debug("Scan session finished")
	return out.PrintSummary(ctrl.PeerCount(), ctrl.DroppedEvents())
}
