package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/SscSPs/expense_tracker_bot/internal/core/domain"
)

func refreshCmd(rt *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch every supported currency pair",
		Long:  `Refresh drops in-memory rates and resolves every supported pair again, persisting what the providers return.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := rt.services.ExchangeRate.RefreshAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("refresh: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "attempted %d, succeeded %d, failed %d in %s\n",
				report.Attempted, report.Succeeded, len(report.Failed), report.Duration.Round(time.Millisecond))
			for _, p := range report.Failed {
				fmt.Fprintf(out, "  failed: %s\n", p)
			}
			return nil
		},
	}
}

func rateCmd(rt *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <from> <to>",
		Short: "Look up one exchange rate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quote, err := rt.services.ExchangeRate.ResolveRate(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", quote.Pair, quote.Rate.String(), quote.Source)
			return nil
		},
	}
}

func convertCmd(rt *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <amount> <from> <to>",
		Short: "Convert an amount between currencies",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			from, to := domain.NormalizeCode(args[1]), domain.NormalizeCode(args[2])
			converted, err := rt.services.ExchangeRate.Convert(cmd.Context(), amount, from, to)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n", amount.String(), from, converted.String(), to)
			return nil
		},
	}
}

func ratesCmd(rt *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "List persisted exchange rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rates, err := rt.services.ExchangeRate.ListRates(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PAIR\tRATE\tUPDATED")
			for _, r := range rates {
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Pair(), r.Rate.String(), r.LastUpdated.UTC().Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}

func balanceCmd(rt *cliState) *cobra.Command {
	var base, lang string
	cmd := &cobra.Command{
		Use:   "balance <owner>",
		Short: "Print an owner's balance summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := rt.services.Balance.FormatBalanceSummary(cmd.Context(), args[0], base, lang)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "base currency (default: owner's preferred currency)")
	cmd.Flags().StringVar(&lang, "lang", "en", "summary language")
	return cmd
}
