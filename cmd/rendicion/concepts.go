package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/garyjia/rendicion/internal/container"
	"github.com/garyjia/rendicion/internal/domain/receipt"
)

func conceptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "concepts [type]",
		Short: "List the accounting concepts",
		Long:  `Lists the active concept catalog, optionally only the entries of one product type (e.g. TARIFA).`,
		Args:  cobra.MaximumNArgs(1),
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

			var entries []receipt.ConceptEntry
			if len(args) == 1 {
				entries = source.Catalog().ByType(strings.ToUpper(args[0]))
				if len(entries) == 0 {
					return fmt.Errorf("unknown product type %q", args[0])
				}
			} else {
				entries = source.Catalog().All()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIPO\tARTICULO\tDESCRIPCION")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.TypeCode, e.ArticleCode, e.Description)
			}
			return w.Flush()
		},
	}
}
