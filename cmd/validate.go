package cmd

import (
	"github.com/spf13/cobra"

	"lodgetix/internal/invoice"
	"lodgetix/internal/logger"
	"lodgetix/internal/store"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a payment/registration pair without generating invoices",
	Long: `Validate the inputs of an invoice generation run and report every
problem found, fatal and degrading alike, without producing any invoices.

Inputs are resolved exactly like for generate.`,
	Example: `  # Validate JSON files
  lodgetix validate --payment payment.json --registration registration.json

  # Validate a matched payment in the database
  lodgetix validate --payment-id pi_3ABC123`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

// ValidationReport is the JSON output of the validate command.
type ValidationReport struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationEntry `json:"issues,omitempty"`
}

// ValidationEntry is one reported problem.
type ValidationEntry struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("payment", "", "Payment record JSON file")
	validateCmd.Flags().String("registration", "", "Registration record JSON file")
	validateCmd.Flags().String("payment-id", "", "Payment id to look up in the database")
	validateCmd.Flags().String("registration-id", "", "Registration id to look up in the database")
	validateCmd.Flags().String("confirmation", "", "Registration confirmation number to look up")
	validateCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	validateCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runValidate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("validate")

	paymentFile, _ := cmd.Flags().GetString("payment")
	registrationFile, _ := cmd.Flags().GetString("registration")
	paymentID, _ := cmd.Flags().GetString("payment-id")
	registrationID, _ := cmd.Flags().GetString("registration-id")
	confirmation, _ := cmd.Flags().GetString("confirmation")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ctx, cancel := createContext(timeoutSecs, log)
	defer cancel()

	var db *store.Store
	if paymentID != "" || registrationID != "" || confirmation != "" {
		var err error
		db, err = openStore(ctx, log)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	payment, registration, err := loadInputs(ctx, db, inputRefs{
		paymentFile:      paymentFile,
		registrationFile: registrationFile,
		paymentID:        paymentID,
		registrationID:   registrationID,
		confirmation:     confirmation,
	}, log)
	if err != nil {
		return err
	}

	var regStore invoice.RegistrationStore
	if db != nil {
		regStore = db
	}
	issues := invoice.NewService(regStore).ValidateInputs(payment, registration)

	report := ValidationReport{Valid: len(issues) == 0}
	for _, issue := range issues {
		report.Issues = append(report.Issues, ValidationEntry{
			Field:   issue.Field,
			Message: issue.Message,
		})
	}

	log.Info().
		Bool("valid", report.Valid).
		Int("issues", len(report.Issues)).
		Msg("Validation completed")

	return outputJSON(report, outputPath, log)
}
