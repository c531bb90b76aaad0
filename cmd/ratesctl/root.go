package main

import (
	"context"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SscSPs/expense_tracker_bot/internal/app"
	portssvc "github.com/SscSPs/expense_tracker_bot/internal/core/ports/services"
	"github.com/SscSPs/expense_tracker_bot/internal/platform/config"
)

// servicesOpener builds the service container for one command run. The returned
// func releases whatever it opened.
type servicesOpener func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*portssvc.ServiceContainer, func(), error)

func openServices(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*portssvc.ServiceContainer, func(), error) {
	a, err := app.New(ctx, cfg, logger, app.Options{})
	if err != nil {
		return nil, nil, err
	}
	return a.Services, a.Close, nil
}

// cliState is filled by the root command before any subcommand runs.
type cliState struct {
	v        *viper.Viper
	open     servicesOpener
	services *portssvc.ServiceContainer
	closer   func()
}

func newRootCmd(open servicesOpener) (*cobra.Command, *cliState) {
	rt := &cliState{v: viper.New(), open: open}

	root := &cobra.Command{
		Use:           "ratesctl",
		Short:         "Operate the exchange rate cache and inspect balances",
		Long:          `ratesctl warms and refreshes the exchange rate cache, looks up and converts rates, and prints owner balances using the same configuration as the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd.Context())
		},
	}

	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("rate-store", config.RateStorePostgres, "exchange rate store (postgres, redis)")
	_ = rt.v.BindPFlag("LOG_LEVEL", root.PersistentFlags().Lookup("log-level"))
	_ = rt.v.BindPFlag("RATE_STORE", root.PersistentFlags().Lookup("rate-store"))

	root.AddCommand(refreshCmd(rt))
	root.AddCommand(rateCmd(rt))
	root.AddCommand(convertCmd(rt))
	root.AddCommand(ratesCmd(rt))
	root.AddCommand(balanceCmd(rt))

	return root, rt
}

// close releases what init opened. Cobra skips post-run hooks on error, so callers
// invoke it after Execute.
func (rt *cliState) close() {
	if rt.closer != nil {
		rt.closer()
		rt.closer = nil
	}
}

func (rt *cliState) init(ctx context.Context) error {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()
	rt.v.AutomaticEnv()

	cfg, err := config.FromViper(rt.v)
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	services, closer, err := rt.open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	rt.services = services
	rt.closer = closer
	return nil
}
