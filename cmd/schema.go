package cmd

import (
	"github.com/spf13/cobra"

	"lodgetix/internal/logger"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the database tables, indexes and sequences",
	Long: `Create the document tables, their lookup indexes and the invoice number
sequence in the configured database. Existing objects are left untouched, so
the command is safe to re-run.`,
	Example: `  # Initialize a fresh database
  lodgetix schema`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runSchema(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("schema")

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ctx, cancel := createContext(timeoutSecs, log)
	defer cancel()

	db, err := openStore(ctx, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Error().Err(err).Msg("Schema creation failed")
		return err
	}

	log.Info().Msg("Database schema ensured")
	return nil
}
