package cmd

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lodgetix/internal/config"
	"lodgetix/internal/invoice"
	"lodgetix/internal/logger"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate invoice pairs for every matched payment in the database",
	Long: `Walk the database for completed payments matched to a registration and
generate the invoice pair for each. Failures are reported per payment and do
not stop the run.

With --save the pairs are persisted; with --number each pair gets the next
sequential invoice number, otherwise temporary numbers are issued.`,
	Example: `  # Dry run: report what would be generated
  lodgetix batch

  # Generate, number and persist everything
  lodgetix batch --number --save

  # Limit one run to 100 payments
  lodgetix batch --limit 100 --save`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

// BatchResult summarizes one batch run.
type BatchResult struct {
	RunID     string        `json:"runId"`
	Processed int           `json:"processed"`
	Generated int           `json:"generated"`
	Failed    int           `json:"failed"`
	Failures  []BatchError  `json:"failures,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// BatchError records one payment the run could not invoice.
type BatchError struct {
	PaymentID string `json:"paymentId"`
	Error     string `json:"error"`
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Int("limit", 0, "Maximum number of payments to process (0 = all)")
	batchCmd.Flags().Bool("number", false, "Reserve sequential invoice numbers")
	batchCmd.Flags().Bool("save", false, "Persist generated invoices to the database")
	batchCmd.Flags().StringP("output", "o", "", "Output file path for the run summary (default: stdout)")
	batchCmd.Flags().Int("timeout", 600, "Run timeout in seconds")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	limit, _ := cmd.Flags().GetInt("limit")
	reserveNumbers, _ := cmd.Flags().GetBool("number")
	save, _ := cmd.Flags().GetBool("save")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	runID := uuid.NewString()
	log = log.With().Str("run_id", runID).Logger()

	ctx, cancel := createContext(timeoutSecs, log)
	defer cancel()

	db, err := openStore(ctx, log)
	if err != nil {
		return err
	}
	defer db.Close()

	matched, err := db.MatchedPayments(ctx, limit)
	if err != nil {
		return err
	}

	log.Info().
		Int("payments", len(matched)).
		Bool("save", save).
		Bool("number", reserveNumbers).
		Msg("Batch run started")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	svc := invoice.NewService(db)
	start := time.Now()
	result := BatchResult{RunID: runID}

	for _, m := range matched {
		if ctx.Err() != nil {
			log.Warn().Int("remaining", len(matched)-result.Processed).Msg("Batch run interrupted")
			break
		}
		result.Processed++

		payment, err := db.PaymentByID(ctx, m.PaymentID)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, BatchError{PaymentID: m.PaymentID, Error: err.Error()})
			continue
		}
		registration, err := db.RegistrationByID(ctx, m.RegistrationID)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, BatchError{PaymentID: m.PaymentID, Error: err.Error()})
			continue
		}

		var opts invoice.GenerationOptions
		if reserveNumbers {
			seq, err := db.NextInvoiceSequence(ctx)
			if err != nil {
				return err
			}
			pp := invoice.NewPaymentProcessor()
			paidDate := pp.Process(payment).PaidDate
			opts.InvoiceNumber = invoice.FormatInvoiceNumber(cfg.InvoicePrefix, paidDate, seq)
			opts.SupplierInvoiceNumber = invoice.FormatInvoiceNumber(cfg.SupplierInvoicePrefix, paidDate, seq)
		}

		pair, err := svc.GenerateInvoicePair(ctx, payment, registration, opts)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, BatchError{PaymentID: m.PaymentID, Error: err.Error()})

			plog := logger.WithPayment("batch", m.PaymentID)
			var genErr *invoice.GenerationError
			if errors.As(err, &genErr) {
				plog.Warn().
					Str("op", genErr.Op).
					Err(err).
					Msg("Pair generation failed")
			} else {
				plog.Warn().Err(err).Msg("Pair generation failed")
			}
			continue
		}

		if save {
			if err := db.SaveInvoice(ctx, pair.Customer); err != nil {
				return err
			}
			if err := db.SaveInvoice(ctx, pair.Supplier); err != nil {
				return err
			}
		}
		result.Generated++
	}

	result.Duration = time.Since(start)

	log.Info().
		Int("processed", result.Processed).
		Int("generated", result.Generated).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Batch run completed")

	return outputJSON(result, outputPath, log)
}
