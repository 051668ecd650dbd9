package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MIDNayanajith/kasthuri-backend/internal/advance"
	"github.com/MIDNayanajith/kasthuri-backend/internal/config"
	"github.com/MIDNayanajith/kasthuri-backend/internal/database"
	"github.com/MIDNayanajith/kasthuri-backend/internal/directory"
	"github.com/MIDNayanajith/kasthuri-backend/internal/hire"
	"github.com/MIDNayanajith/kasthuri-backend/internal/invoice"
	"github.com/MIDNayanajith/kasthuri-backend/internal/ledger"
	"github.com/MIDNayanajith/kasthuri-backend/internal/logger"
	"github.com/MIDNayanajith/kasthuri-backend/internal/payroll"
	"github.com/MIDNayanajith/kasthuri-backend/internal/report"
	"github.com/MIDNayanajith/kasthuri-backend/internal/trip"
)

// app is the wired object graph behind every subcommand.
type app struct {
	db       *database.DB
	advances *advance.Service
	payroll  *payroll.Service
	hires    *hire.Service
	trips    *trip.Service
	invoices *invoice.Service
	reports  *report.Service
}

func newApp() (*app, error) {
	cfg := config.Load()
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	dir := directory.NewDirectory(db)
	advanceRepo := advance.NewPostgresRepository(db)
	payrollRepo := payroll.NewPostgresRepository(db)
	hireRepo := hire.NewPostgresRepository(db)
	tripRepo := trip.NewPostgresRepository(db)
	invoiceRepo := invoice.NewPostgresRepository(db)

	advances := advance.NewService(advanceRepo, dir)
	payrolls := payroll.NewService(payrollRepo, advances, db)
	hires := hire.NewService(hireRepo)
	trips := trip.NewService(tripRepo, hires, dir)
	invoices := invoice.NewService(invoiceRepo, tripRepo, dir, db)
	reports := report.NewService(tripRepo, payrollRepo, hireRepo, advanceRepo)

	return &app{
		db:       db,
		advances: advances,
		payroll:  payrolls,
		hires:    hires,
		trips:    trips,
		invoices: invoices,
		reports:  reports,
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		l := logger.WithComponent("app")
		l.Warn().Err(err).Msg("failed to close database")
	}
}

// withApp connects, runs fn, and tears the connection down again.
func withApp(fn func(ctx context.Context, a *app) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), a)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var rootCmd = &cobra.Command{
	Use:   "bms",
	Short: "Kasthuri Enterprises fleet business backend",
	Long: `bms manages the financial core of the fleet business: cash advances,
payroll settlements, external vehicle hires, transport trips, client
invoices, and the monthly income/expense reports built on top of them.`,
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	RunE: withApp(func(ctx context.Context, a *app) error {
		if err := a.db.Migrate(ctx); err != nil {
			return err
		}
		l := logger.WithComponent("migrate")
		l.Info().Msg("schema is up to date")
		return nil
	}),
}

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Create, inspect, and render client invoices",
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Batch completed trips of one client into an invoice",
	Example: `  # Invoice trips 12, 14 and 15, created by user 1
  bms invoice create --trip 12 --trip 14 --trip 15 --user 1`,
	RunE: withApp(func(ctx context.Context, a *app) error {
		inv, err := a.invoices.Create(ctx, invoiceTripIDs, invoiceUserID)
		if err != nil {
			return err
		}
		return printJSON(inv)
	}),
}

var invoiceRenderCmd = &cobra.Command{
	Use:   "render [invoice-id]",
	Short: "Print the letterhead document of an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice id %q", args[0])
		}
		return withApp(func(ctx context.Context, a *app) error {
			doc, err := a.invoices.RenderDocument(ctx, id)
			if err != nil {
				return err
			}
			fmt.Print(doc)
			return nil
		})(cmd, args)
	},
}

var invoiceStatusCmd = &cobra.Command{
	Use:   "status [invoice-id] [status]",
	Short: "Move an invoice to Draft, Sent, Paid, or Overdue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice id %q", args[0])
		}
		return withApp(func(ctx context.Context, a *app) error {
			inv, err := a.invoices.UpdateStatus(ctx, id, invoice.Status(args[1]))
			if err != nil {
				return err
			}
			return printJSON(inv)
		})(cmd, args)
	},
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete [invoice-id]",
	Short: "Soft-delete an invoice and release its trips",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice id %q", args[0])
		}
		return withApp(func(ctx context.Context, a *app) error {
			return a.invoices.Delete(ctx, id)
		})(cmd, args)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Income and expense rollups",
}

var reportMonthCmd = &cobra.Command{
	Use:   "month [YYYY-MM]",
	Short: "Print the rollup for one calendar month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := ledger.ParsePeriod(args[0])
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			sum, err := a.reports.Monthly(ctx, p)
			if err != nil {
				return err
			}
			return printJSON(sum)
		})(cmd, args)
	},
}

var reportYearCmd = &cobra.Command{
	Use:   "year [YYYY]",
	Short: "Print twelve monthly rollups and the yearly totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid year %q", args[0])
		}
		return withApp(func(ctx context.Context, a *app) error {
			rep, err := a.reports.Yearly(ctx, year)
			if err != nil {
				return err
			}
			return printJSON(rep)
		})(cmd, args)
	},
}

var (
	invoiceTripIDs []int64
	invoiceUserID  int64
)

func init() {
	invoiceCreateCmd.Flags().Int64SliceVar(&invoiceTripIDs, "trip", nil, "trip ID to include (repeatable)")
	invoiceCreateCmd.Flags().Int64Var(&invoiceUserID, "user", 0, "creating user ID")
	_ = invoiceCreateCmd.MarkFlagRequired("trip")
	_ = invoiceCreateCmd.MarkFlagRequired("user")

	invoiceCmd.AddCommand(invoiceCreateCmd, invoiceRenderCmd, invoiceStatusCmd, invoiceDeleteCmd)
	reportCmd.AddCommand(reportMonthCmd, reportYearCmd)
	rootCmd.AddCommand(migrateCmd, invoiceCmd, reportCmd)
}
