// Command rendicion runs the receipt pipeline and trip exports from the
// command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/config"
	"github.com/garyjia/rendicion/pkg/utils"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rendicion",
		Short:         "Trip expense receipts for truck drivers",
		Long:          `rendicion classifies receipt text into expense drafts, lists the accounting concepts and exports approved trips.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "configs/config.yaml", "config file")
	root.PersistentFlags().String("catalog", "", "concept catalog JSON file (default: built-in catalog)")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(classifyCmd())
	root.AddCommand(conceptsCmd())
	root.AddCommand(stepCmd())
	root.AddCommand(exportCmd())

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config and lets the command
// line flags override it. The CLI never talks to an AI provider.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	return config.Load(path, func(v *viper.Viper) error {
		v.Set("scanner.provider", config.ProviderNone)
		v.Set("logger.output_path", "stderr")
		v.Set("logger.format", "console")

		bindings := map[string]string{
			"catalog.path":  "catalog",
			"logger.level":  "log-level",
			"database.path": "db",
		}
		for key, name := range bindings {
			if flag := cmd.Flags().Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
}
