package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"hubcoin/internal/domain"
	"hubcoin/internal/migrations"
	"hubcoin/internal/repository"
	"hubcoin/internal/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect or apply database migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List migrations in apply order",
			RunE: func(cmd *cobra.Command, args []string) error {
				names, err := migrations.List()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "apply",
			Short: "Apply all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				pool, _, err := connect(cmd.Context())
				if err != nil {
					return err
				}
				defer pool.Close()

				return migrations.Apply(cmd.Context(), pool, func(name string) {
					fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
				})
			},
		},
	)
	return cmd
}

type seedOptions struct {
	username      string
	unclaimedGems int64
	balance       string
	referrer      string
	dryRun        bool
}

func newSeedAccountCmd() *cobra.Command {
	var opts seedOptions
	cmd := &cobra.Command{
		Use:   "seed-account <user_id>",
		Short: "Create an account if needed and top it up for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			var (
				store repository.AccountStore
				loc   *time.Location
			)
			if opts.dryRun {
				store = repository.NewMemoryLedger()
			} else {
				pool, cfg, err := connect(ctx)
				if err != nil {
					return err
				}
				defer pool.Close()
				store = repository.NewPostgresLedger(pool)
				loc = cfg.ClaimLocation
			}

			acc, err := seedAccount(ctx, store, service.NewClock(loc), args[0], opts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(acc)
		},
	}
	cmd.Flags().StringVar(&opts.username, "username", "", "username for a new account")
	cmd.Flags().Int64Var(&opts.unclaimedGems, "unclaimed-gems", 0, "unclaimed gems to add")
	cmd.Flags().StringVar(&opts.balance, "balance", "0", "balance to add")
	cmd.Flags().StringVar(&opts.referrer, "referrer", "", "referrer id for a new account (rewards the referrer)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "run against an in-memory ledger")
	return cmd
}

func seedAccount(ctx context.Context, store repository.AccountStore, clock service.Clock, userID string, opts seedOptions) (*domain.Account, error) {
	balance, err := decimal.NewFromString(opts.balance)
	if err != nil {
		return nil, fmt.Errorf("invalid --balance: %w", err)
	}

	accounts := service.NewAccountService(store, service.NewReferralService(store, nil), clock)
	if _, _, err := accounts.CreateOrFetch(ctx, service.AccountRequest{
		UserID:     userID,
		Username:   opts.username,
		ReferrerID: opts.referrer,
	}); err != nil {
		return nil, err
	}

	change := domain.AccountChange{Balance: balance, UnclaimedGems: opts.unclaimedGems}
	if !change.IsZero() {
		if err := store.IncrementAccount(ctx, userID, change); err != nil {
			return nil, err
		}
	}
	return store.GetAccount(ctx, userID)
}

func newFeeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fee <method> <amount>",
		Short: "Print the gem fee for a withdrawal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			required := service.RequiredGems(args[0], amount)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "required: %s gems\n", required.String())
			fmt.Fprintf(out, "deducted: %d gems\n", required.Truncate(0).IntPart())
			if !service.KnownMethod(args[0]) {
				fmt.Fprintf(out, "note: %s has no fee schedule\n", args[0])
			}
			return nil
		},
	}
}

func newWithdrawalsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "withdrawals <user_id>",
		Short: "List a user's withdrawal requests, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			pool, _, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			list, err := repository.NewPostgresLedger(pool).ListWithdrawals(ctx, args[0], limit)
			if err != nil {
				return err
			}
			return printWithdrawals(cmd, list)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows")
	return cmd
}

func printWithdrawals(cmd *cobra.Command, list []domain.WithdrawalRequest) error {
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no withdrawal requests")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{"ID", "SUBMITTED", "AMOUNT", "METHOD", "ACCOUNT", "STATUS"}, "\t"))
	for _, w := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			w.ID, w.SubmittedAt.UTC().Format(time.RFC3339), w.Amount.StringFixed(2), w.Method, w.Account, w.Status)
	}
	return tw.Flush()
}
