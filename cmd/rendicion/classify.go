package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/garyjia/rendicion/internal/ai"
	"github.com/garyjia/rendicion/internal/container"
	"github.com/garyjia/rendicion/internal/domain/receipt"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [file|-]",
		Short: "Turn recognized receipt text into an expense draft",
		Long: `Reads the text of a receipt from a file or standard input and prints the
expense draft as JSON. An AI reading of the same receipt can be supplied with
--guess; its validated fields take precedence over the ones found in the text.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			source, err := container.ProvideCatalog(cfg.Catalog, logger)
			if err != nil {
				return err
			}

			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			text, err := readInput(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}

			var guess *receipt.AIGuess
			if path, _ := cmd.Flags().GetString("guess"); path != "" {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read guess: %w", err)
				}
				if guess, err = ai.ParseGuess(string(raw)); err != nil {
					return fmt.Errorf("failed to parse guess: %w", err)
				}
			}

			draft := receipt.Analyze(source.Catalog(), text, guess)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(draft)
		},
	}

	cmd.Flags().String("guess", "", "JSON file with an AI reading of the receipt")
	return cmd
}

func readInput(stdin io.Reader, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read receipt text: %w", err)
	}
	return string(data), nil
}
