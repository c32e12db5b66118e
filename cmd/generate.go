package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"lodgetix/internal/config"
	"lodgetix/internal/invoice"
	"lodgetix/internal/logger"
	"lodgetix/internal/store"
	"lodgetix/pkg/models"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a customer/supplier invoice pair for a matched payment",
	Long: `Generate the customer invoice and its derived supplier invoice for one
matched payment/registration pair.

Inputs come either from JSON files (--payment and --registration) or from the
configured database (--payment-id with --registration-id or --confirmation).
When only --payment-id is given, the registration the payment was matched to
is used.

The output is a JSON document containing both invoices. Without a reserved
invoice number the pair carries temporary numbers and must be renumbered
before dispatch.`,
	Example: `  # Generate from JSON files to stdout
  lodgetix generate --payment payment.json --registration registration.json

  # Generate from the database by payment id
  lodgetix generate --payment-id pi_3ABC123

  # Reserve a sequential number and persist the pair
  lodgetix generate --payment-id pi_3ABC123 --number --save

  # Save the pair to a file
  lodgetix generate --payment payment.json --registration registration.json -o pair.json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().String("payment", "", "Payment record JSON file")
	generateCmd.Flags().String("registration", "", "Registration record JSON file")
	generateCmd.Flags().String("payment-id", "", "Payment id to look up in the database")
	generateCmd.Flags().String("registration-id", "", "Registration id to look up in the database")
	generateCmd.Flags().String("confirmation", "", "Registration confirmation number to look up")
	generateCmd.Flags().String("invoice-number", "", "Pre-allocated customer invoice number")
	generateCmd.Flags().Bool("number", false, "Reserve the next sequential invoice number from the database")
	generateCmd.Flags().Bool("customer-only", false, "Generate only the customer invoice")
	generateCmd.Flags().Bool("save", false, "Persist generated invoices to the database")
	generateCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	generateCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("generate")

	paymentFile, _ := cmd.Flags().GetString("payment")
	registrationFile, _ := cmd.Flags().GetString("registration")
	paymentID, _ := cmd.Flags().GetString("payment-id")
	registrationID, _ := cmd.Flags().GetString("registration-id")
	confirmation, _ := cmd.Flags().GetString("confirmation")
	invoiceNumber, _ := cmd.Flags().GetString("invoice-number")
	reserveNumber, _ := cmd.Flags().GetBool("number")
	customerOnly, _ := cmd.Flags().GetBool("customer-only")
	save, _ := cmd.Flags().GetBool("save")
	outputPath, _ := cmd.Flags().GetString("output")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	if paymentFile == "" && paymentID == "" {
		return fmt.Errorf("either --payment or --payment-id is required")
	}

	ctx, cancel := createContext(timeoutSecs, log)
	defer cancel()

	needsStore := paymentID != "" || registrationID != "" || confirmation != "" || reserveNumber || save
	var db *store.Store
	if needsStore {
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

	var supplierNumber string
	if reserveNumber {
		seq, err := db.NextInvoiceSequence(ctx)
		if err != nil {
			return err
		}
		customerPrefix, supplierPrefix := "LTIV-", "LTSP-"
		if cfg, err := config.Load(); err == nil {
			customerPrefix, supplierPrefix = cfg.InvoicePrefix, cfg.SupplierInvoicePrefix
		}
		pp := invoice.NewPaymentProcessor()
		paidDate := pp.Process(payment).PaidDate
		invoiceNumber = invoice.FormatInvoiceNumber(customerPrefix, paidDate, seq)
		supplierNumber = invoice.FormatInvoiceNumber(supplierPrefix, paidDate, seq)
	}

	var regStore invoice.RegistrationStore
	if db != nil {
		regStore = db
	}
	svc := invoice.NewService(regStore)
	opts := invoice.GenerationOptions{InvoiceNumber: invoiceNumber, SupplierInvoiceNumber: supplierNumber}

	if customerOnly {
		customer, err := svc.GenerateCustomerInvoice(ctx, payment, registration, opts)
		if err != nil {
			log.Error().Err(err).Msg("Customer invoice generation failed")
			return err
		}
		if save {
			if err := db.SaveInvoice(ctx, customer); err != nil {
				return err
			}
		}
		return outputJSON(customer, outputPath, log)
	}

	pair, err := svc.GenerateInvoicePair(ctx, payment, registration, opts)
	if err != nil {
		log.Error().Err(err).Msg("Invoice pair generation failed")
		return err
	}

	log.Info().
		Str("customer_invoice", pair.Customer.InvoiceNumber).
		Str("supplier_invoice", pair.Supplier.InvoiceNumber).
		Float64("total", pair.Customer.Total).
		Msg("Invoice pair generated")

	if save {
		if err := db.SaveInvoice(ctx, pair.Customer); err != nil {
			return err
		}
		if err := db.SaveInvoice(ctx, pair.Supplier); err != nil {
			return err
		}
	}

	return outputJSON(pair, outputPath, log)
}

// inputRefs names where the generation inputs come from.
type inputRefs struct {
	paymentFile      string
	registrationFile string
	paymentID        string
	registrationID   string
	confirmation     string
}

// loadInputs resolves the payment and registration from files or the store.
// A payment loaded from the store supplies its matched registration id when
// no registration reference was given.
func loadInputs(ctx context.Context, db *store.Store, refs inputRefs, log zerolog.Logger) (*models.PaymentRecord, *models.RegistrationRecord, error) {
	var payment models.PaymentRecord
	switch {
	case refs.paymentFile != "":
		if err := loadJSONFile(refs.paymentFile, &payment, log); err != nil {
			return nil, nil, err
		}
	case refs.paymentID != "":
		p, err := db.PaymentByID(ctx, refs.paymentID)
		if err != nil {
			log.Error().Err(err).Str("payment_id", refs.paymentID).Msg("Payment lookup failed")
			return nil, nil, err
		}
		payment = *p
	}

	registrationID := refs.registrationID
	if registrationID == "" && refs.registrationFile == "" && refs.confirmation == "" {
		registrationID = payment.MatchedRegistrationID
		if registrationID == "" {
			return nil, nil, fmt.Errorf("payment has no matched registration; supply --registration, --registration-id or --confirmation")
		}
	}

	var registration models.RegistrationRecord
	switch {
	case refs.registrationFile != "":
		if err := loadJSONFile(refs.registrationFile, &registration, log); err != nil {
			return nil, nil, err
		}
	case refs.confirmation != "":
		r, err := db.RegistrationByConfirmation(ctx, refs.confirmation)
		if err != nil {
			log.Error().Err(err).Str("confirmation", refs.confirmation).Msg("Registration lookup failed")
			return nil, nil, err
		}
		registration = *r
	default:
		r, err := db.RegistrationByID(ctx, registrationID)
		if err != nil {
			log.Error().Err(err).Str("registration_id", registrationID).Msg("Registration lookup failed")
			return nil, nil, err
		}
		registration = *r
	}

	return &payment, &registration, nil
}

// openStore connects using the configured database URL.
func openStore(ctx context.Context, log zerolog.Logger) (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not configured")
	}

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error().Err(err).Msg("Database connection failed")
		return nil, err
	}
	return db, nil
}
