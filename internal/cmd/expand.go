package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querylens/querylens/internal/config"
	"github.com/querylens/querylens/internal/core/engine"
	"github.com/querylens/querylens/internal/core/expand"
)

var expandCmd = &cobra.Command{
	Use:   "expand [seeds...]",
	Short: "Show query variants without fetching",
	Long:  "Expand seeds into the query variants a run would fetch. No network calls.",
	RunE:  runExpand,
}

func init() {
	rootCmd.AddCommand(expandCmd)

	expandCmd.Flags().String("seeds-file", "", "read seeds from file, one per line (- for stdin)")
	expandCmd.Flags().Bool("az", false, "A-Z expansion (also list 'seed a'..'seed z')")
	expandCmd.Flags().StringSlice("prefix", nil, "prefixes to combine before each seed")
	expandCmd.Flags().StringSlice("suffix", nil, "suffixes to combine after each seed")
	expandCmd.Flags().String("preset", "", "YAML preset file with prefixes/suffixes ('default' for the built-in set)")
}

func runExpand(cmd *cobra.Command, args []string) error {
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

	opts := expand.Options{Letters: cfg.Expand.Letters}
	if az, _ := cmd.Flags().GetBool("az"); az {
		opts.Letters = true
	}
	opts.Prefixes, _ = cmd.Flags().GetStringSlice("prefix")
	opts.Suffixes, _ = cmd.Flags().GetStringSlice("suffix")

	if presetPath, _ := cmd.Flags().GetString("preset"); presetPath != "" {
		preset, err := expand.LoadPreset(presetPath)
		if err != nil {
			return err
		}
		opts.Prefixes = append(opts.Prefixes, preset.Prefixes...)
		opts.Suffixes = append(opts.Suffixes, preset.Suffixes...)
	}

	for _, seed := range seeds {
		for _, variant := range expand.Variants(seed, opts) {
			fmt.Println(variant)
		}
	}

	return nil
}
