package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/querylens/querylens/internal/config"
	"github.com/querylens/querylens/internal/core"
	"github.com/querylens/querylens/internal/core/engine"
	"github.com/querylens/querylens/internal/core/expand"
	"github.com/querylens/querylens/internal/core/store"
	"github.com/querylens/querylens/internal/observability"
	"github.com/querylens/querylens/internal/output"
)

var runCmd = &cobra.Command{
	Use:   "run [seeds...]",
	Short: "Run an autocomplete batch",
	Long:  "Expand seeds into query variants and fetch suggestions for each, paced and retried per configuration.",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("seeds-file", "", "read seeds from file, one per line (- for stdin)")
	runCmd.Flags().Bool("az", false, "A-Z expansion (also query 'seed a'..'seed z')")
	runCmd.Flags().StringSlice("prefix", nil, "prefixes to combine before each seed")
	runCmd.Flags().StringSlice("suffix", nil, "suffixes to combine after each seed")
	runCmd.Flags().String("preset", "", "YAML preset file with prefixes/suffixes ('default' for the built-in set)")
	runCmd.Flags().Bool("no-seed-row", false, "drop the bare seed query when other variants exist")
	runCmd.Flags().Bool("no-dedupe", false, "keep duplicate (seed, suggestion) rows")
	runCmd.Flags().Int("rpm", 0, "max requests per minute (default from config)")
	runCmd.Flags().Int("max-retries", -1, "max retries per query (default from config)")
	runCmd.Flags().Duration("backoff", 0, "base backoff between retries (default from config)")
	runCmd.Flags().String("gl", "", "country code (overrides config locale)")
	runCmd.Flags().String("hl", "", "language code (overrides config locale)")
	runCmd.Flags().String("client", "", "autocomplete client (overrides config locale)")
	runCmd.Flags().String("google-domain", "", "google domain (overrides config locale)")
	runCmd.Flags().String("output", "", "output format: table, json, csv")
	runCmd.Flags().String("delimiter", "", "CSV delimiter: ',', ';', or tab")
	runCmd.Flags().String("out", "", "write output to file instead of stdout")
	runCmd.Flags().Bool("no-store", false, "skip recording the run in history")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	if cfg == nil {
		return errors.New("config not loaded")
	}

	seedsFile, _ := cmd.Flags().GetString("seeds-file")
	seeds, err := resolveSeeds(args, seedsFile)
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		return engine.ErrNoSeeds
	}

	opts, err := collectRunOptions(cmd, cfg)
	if err != nil {
		return err
	}

	formatValue, _ := cmd.Flags().GetString("output")
	if formatValue == "" {
		formatValue = cfg.Output.Format
	}
	format, err := output.ParseFormat(formatValue)
	if err != nil {
		return err
	}

	delimValue, _ := cmd.Flags().GetString("delimiter")
	if delimValue == "" {
		delimValue = cfg.Output.Delimiter
	}
	delimiter, err := output.ParseDelimiter(delimValue)
	if err != nil {
		return err
	}

	logger := observability.CLILogger

	svc := &engine.Service{
		Config: cfg,
		Logger: logger,
		Progress: func(done, total int) {
			logger.Info("progress", zap.Int("done", done), zap.Int("total", total))
		},
	}

	if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore {
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			logger.Warn("run history disabled", zap.Error(err))
		} else {
			defer st.Close() // nolint:errcheck // best-effort cleanup
			svc.Store = st
		}
	}

	startedAt := time.Now()
	result, err := svc.Run(cmd.Context(), core.RunRequest{Seeds: seeds, Options: opts})
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format, delimiter).FormatRun(result)
	if err != nil {
		return err
	}

	if outPath, _ := cmd.Flags().GetString("out"); outPath != "" {
		if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
		logger.Info("wrote output", zap.String("path", outPath))
	} else {
		fmt.Println(rendered)
	}

	logger.Info("batch completed",
		zap.String("run_id", result.RunID),
		zap.Int("seeds", len(result.Seeds)),
		zap.Int("queries", result.QueryCount),
		zap.Int("rows", len(result.Rows)),
		zap.Duration("elapsed", time.Since(startedAt)))

	return nil
}

// collectRunOptions merges flags over config defaults.
func collectRunOptions(cmd *cobra.Command, cfg *config.Config) (core.RunOptions, error) {
	opts := core.RunOptions{
		Letters:       cfg.Expand.Letters,
		Prefixes:      cfg.Expand.Prefixes,
		Suffixes:      cfg.Expand.Suffixes,
		KeepSeedFirst: cfg.Expand.KeepSeedFirst,
		Dedupe:        cfg.Expand.Dedupe,
		RPM:           cfg.Pacing.RPM,
		MaxRetries:    cfg.Pacing.MaxRetries,
		Backoff:       cfg.Pacing.Backoff,
	}

	if az, _ := cmd.Flags().GetBool("az"); az {
		opts.Letters = true
	}
	if prefixes, _ := cmd.Flags().GetStringSlice("prefix"); len(prefixes) > 0 {
		opts.Prefixes = prefixes
	}
	if suffixes, _ := cmd.Flags().GetStringSlice("suffix"); len(suffixes) > 0 {
		opts.Suffixes = suffixes
	}

	presetPath, _ := cmd.Flags().GetString("preset")
	if presetPath == "" {
		presetPath = cfg.Expand.PresetFile
	}
	if presetPath != "" {
		preset, err := expand.LoadPreset(presetPath)
		if err != nil {
			return core.RunOptions{}, err
		}
		opts.Prefixes = append(opts.Prefixes, preset.Prefixes...)
		opts.Suffixes = append(opts.Suffixes, preset.Suffixes...)
	}

	if noSeedRow, _ := cmd.Flags().GetBool("no-seed-row"); noSeedRow {
		opts.KeepSeedFirst = false
	}
	if noDedupe, _ := cmd.Flags().GetBool("no-dedupe"); noDedupe {
		opts.Dedupe = false
	}
	if rpm, _ := cmd.Flags().GetInt("rpm"); rpm > 0 {
		opts.RPM = rpm
	}
	if retries, _ := cmd.Flags().GetInt("max-retries"); retries >= 0 {
		opts.MaxRetries = retries
	}
	if backoff, _ := cmd.Flags().GetDuration("backoff"); backoff > 0 {
		opts.Backoff = backoff
	}

	opts.Locale = localeOverrides(cmd)
	return opts, nil
}

// localeOverrides collects per-run locale flags; the service merges them
// over the configured locale map.
func localeOverrides(cmd *cobra.Command) map[string]string {
	locale := map[string]string{}
	for flag, key := range map[string]string{
		"gl":            "gl",
		"hl":            "hl",
		"client":        "client",
		"google-domain": "google_domain",
	} {
		if value, _ := cmd.Flags().GetString(flag); value != "" {
			locale[key] = value
		}
	}
	return locale
}
