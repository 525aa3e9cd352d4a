// Package vitrinecmder
package vitrinecmder

import (
	"github.com/spf13/cobra"

	ingestcmder "github.com/vitrineworks/vitrine/cmd/vitrine/ingest"
	servecmder "github.com/vitrineworks/vitrine/cmd/vitrine/serve"
	versioncmder "github.com/vitrineworks/vitrine/cmd/version"
)

const vitrineLongDesc string = `Vitrine is a RAG chatbot backend for a personal portfolio.

Run services using:
  vitrine serve     Run the HTTP API server
  vitrine ingest    Rebuild the vector index from the portfolio corpus`

const vitrineShortDesc string = "Vitrine - Portfolio RAG Backend"

func NewVitrineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vitrine",
		Short: vitrineShortDesc,
		Long:  vitrineLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .vitrine/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
