package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/rendicion/internal/container"
)

func exportCmd() *cobra.Command {
	var (
		trip int64
		out  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the expense report of a trip as XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := container.ProvideDatabase(cfg.Database, logger)
			if err != nil {
				return err
			}
			if db.DB != nil {
				defer db.DB.Close()
			}

			source, err := container.ProvideCatalog(cfg.Catalog, logger)
			if err != nil {
				return err
			}

			services, err := container.ProvideServices(&container.ServiceDeps{
				Repos:     db.Repositories,
				TxManager: db.TxManager,
				Catalog:   source,
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := services.Exports.ExportTrip(cmd.Context(), trip, &buf); err != nil {
				return fmt.Errorf("failed to export trip %d: %w", trip, err)
			}

			if out == "" {
				out = filepath.Join(cfg.Export.OutputDir, fmt.Sprintf("rendicion-viaje-%d.xlsx", trip))
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			logger.Info("Trip exported", zap.Int64("trip", trip), zap.String("file", out))
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Int64Var(&trip, "trip", 0, "trip number")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: rendicion-viaje-N.xlsx in export.output_dir)")
	cmd.Flags().String("db", "", "SQLite database file (overrides database.path)")
	_ = cmd.MarkFlagRequired("trip")
	return cmd
}
