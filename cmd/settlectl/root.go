package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"giveaway-settlement/internal/app"
	"giveaway-settlement/internal/common/config"
	"giveaway-settlement/internal/common/logger"
)

var (
	timeout time.Duration
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "settlectl",
	Short:         "Run giveaway settlement steps",
	Long:          "Runs a single lifecycle sweep, winner selection, recipient registration, payout or reconciliation.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "maximum duration of the command")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(sweepCmd, selectWinnersCmd, registerRecipientsCmd, payoutCmd, reconcileCmd)
}

// withApp builds the application, runs fn with a bounded context and prints its result as JSON.
func withApp(fn func(ctx context.Context, a *app.App) (any, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	debug := cfg.Debug || verbose

	logger.Init("settlectl", debug)
	zapLogger, err := logger.NewZap("settlectl", debug, logger.FileOptions{Path: cfg.Log.File})
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, zapLogger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := fn(ctx, a)
	if err != nil {
		zapLogger.Error("Command failed", zap.Error(err))
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "End every giveaway whose end time has passed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app.App) (any, error) {
			n, err := a.Lifecycle.Sweep(ctx)
			return map[string]int64{"ended": n}, err
		})
	},
}

var selectWinnersCmd = &cobra.Command{
	Use:   "select-winners [giveaway-id]",
	Short: "Select winners for one giveaway, or for every ended giveaway without winners",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app.App) (any, error) {
			if len(args) == 1 {
				n, err := a.Winners.SelectWinners(ctx, args[0])
				return map[string]int{"winners": n}, err
			}
			n, err := a.Winners.SelectPending(ctx)
			return map[string]int{"winners": n}, err
		})
	},
}

var registerRecipientsCmd = &cobra.Command{
	Use:   "register-recipients",
	Short: "Create gateway transfer recipients for winners",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app.App) (any, error) {
			n, err := a.Recipients.Run(ctx)
			return map[string]int{"registered": n}, err
		})
	},
}

var payoutCmd = &cobra.Command{
	Use:   "payout",
	Short: "Submit payouts for giveaways with unpaid winners",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app.App) (any, error) {
			return a.Payouts.Run(ctx)
		})
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <reference>",
	Short: "Verify one transaction with the gateway and apply the outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "" {
			return fmt.Errorf("reference is required")
		}
		return withApp(func(ctx context.Context, a *app.App) (any, error) {
			return a.Reconciler.Verify(ctx, args[0])
		})
	},
}
