package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/querylens/querylens/internal/config"
	"github.com/querylens/querylens/internal/core/engine"
	"github.com/querylens/querylens/internal/core/suggest"
)

var playCmd = &cobra.Command{
	Use:   "play <query>",
	Short: "Test a single query and print the raw JSON response",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	if cfg == nil {
		return errors.New("config not loaded")
	}
	if cfg.SerpAPI.APIKey == "" {
		return engine.ErrMissingAPIKey
	}

	client := &suggest.Client{
		APIKey:  cfg.SerpAPI.APIKey,
		Locale:  cfg.Locale,
		BaseURL: cfg.SerpAPI.BaseURL,
		Client:  cfg.SerpAPI.HTTPClient(),
	}

	raw, err := client.Raw(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var pretty map[string]any
	if err := json.Unmarshal(raw, &pretty); err != nil {
		return err
	}
	indented, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(indented))
	return nil
}
