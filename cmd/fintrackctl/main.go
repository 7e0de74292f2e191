// fintrackctl is the admin CLI: schema migrations and demo data
// seeding against the configured SQLite database.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fintrack/internal/config"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	root := &cobra.Command{
		Use:   "fintrackctl",
		Short: "Admin tooling for the fintrack database",
	}
	root.AddCommand(migrateCmd(cfg), seedCmd(cfg))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			cmd.Printf("Migrations applied to %s\n", cfg.SQLiteDBPath)
			return nil
		},
	}
}

func seedCmd(cfg *config.Config) *cobra.Command {
	var userID int64
	var months int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo transactions and a sample goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close()

			ctx := context.Background()
			inserted, err := seedTransactions(ctx, store, userID, months)
			if err != nil {
				return err
			}
			if err := seedGoal(ctx, store, userID); err != nil {
				return err
			}
			cmd.Printf("Seeded %d transactions and 1 goal for user %d\n", inserted, userID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 1, "user to seed data for")
	cmd.Flags().IntVar(&months, "months", 6, "months of history to generate")
	return cmd
}

// seedTransactions writes a repeating month of income and expenses, a
// plausible household ledger for trying the analytics endpoints.
func seedTransactions(ctx context.Context, store storage.Store, userID int64, months int) (int, error) {
	type entry struct {
		day      int
		typ      core.TransactionType
		cents    int64
		category string
		merchant string
	}
	pattern := []entry{
		{1, core.Income, 520000, "Salary", "Acme Corp"},
		{2, core.Expense, 150000, "Rent", "Landlord"},
		{3, core.Expense, 9500, "Bills", "Power Co"},
		{5, core.Expense, 12400, "Food", "Grocer"},
		{9, core.Expense, 4200, "Entertainment", "Cinema"},
		{12, core.Expense, 13800, "Food", "Grocer"},
		{15, core.Expense, 8900, "Shopping", "Outfitters"},
		{19, core.Expense, 11900, "Food", "Grocer"},
		{22, core.Expense, 3500, "Travel", "Metro"},
		{26, core.Expense, 12700, "Food", "Grocer"},
	}

	now := time.Now()
	inserted := 0
	for m := months; m >= 1; m-- {
		monthStart := now.AddDate(0, -m, 0)
		for _, e := range pattern {
			tx := core.Transaction{
				UserID:   userID,
				Date:     core.NewDate(monthStart.Year(), int(monthStart.Month()), e.day),
				Type:     e.typ,
				Amount:   core.Money{Cents: e.cents},
				Category: e.category,
				Merchant: e.merchant,
			}
			if _, err := store.InsertTransaction(ctx, tx); err != nil {
				return inserted, fmt.Errorf("seed transaction: %w", err)
			}
			inserted++
		}
	}
	return inserted, nil
}

func seedGoal(ctx context.Context, store storage.Store, userID int64) error {
	now := time.Now()
	goal := core.Goal{
		UserID:       userID,
		Name:         "Emergency fund",
		Type:         "savings",
		TargetAmount: core.Money{Cents: 1000000},
		StartDate:    core.DateOf(now),
		TargetDate:   core.DateOf(now.AddDate(1, 0, 0)),
		Category:     "Savings",
		Priority:     "high",
		Status:       core.GoalActive,
	}
	saved, err := store.CreateGoal(ctx, goal)
	if err != nil {
		return fmt.Errorf("seed goal: %w", err)
	}

	_, err = store.AddContribution(ctx, userID, core.GoalContribution{
		GoalID: saved.ID,
		Amount: core.Money{Cents: 150000},
		Date:   core.DateOf(now),
		Notes:  "Opening deposit",
	})
	if err != nil {
		return fmt.Errorf("seed contribution: %w", err)
	}
	return nil
}
