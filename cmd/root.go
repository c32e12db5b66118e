package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"lodgetix/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "lodgetix",
	Short: "LodgeTix invoicing CLI - generate invoices from matched payments",
	Long: `LodgeTix invoicing CLI reconciles imported payment records against
event registrations and generates matched customer/supplier invoice pairs.

Payments and registrations can be supplied as JSON files or looked up in the
configured Postgres database. Generated invoices are emitted as JSON and can
optionally be persisted back to the database.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("LodgeTix CLI executed")

		fmt.Println("Welcome to the LodgeTix invoicing CLI!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

// createContext creates a context with timeout and signal handling.
func createContext(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// loadJSONFile reads and decodes one JSON document.
func loadJSONFile(path string, dest any, log zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().
			Err(err).
			Str("file", path).
			Msg("Failed to read input file")
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Error().
			Err(err).
			Str("file", path).
			Msg("Failed to parse input file")
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// outputJSON writes the result to the output path, or stdout when none is
// given.
func outputJSON(result any, outputPath string, log zerolog.Logger) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	if outputPath == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		log.Error().
			Err(err).
			Str("file", outputPath).
			Msg("Failed to write output file")
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	log.Info().
		Str("file", outputPath).
		Int("bytes", len(data)).
		Msg("Output written")
	return nil
}
