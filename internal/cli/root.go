// Package cli implements leasectl, the command line entry point used by
// cron-driven deployments to run sweeps and one-off operations.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjperalta/arrendamientos-api/internal/models"
	"github.com/sjperalta/arrendamientos-api/internal/services"
)

// Factory builds the services for one command run. The returned func
// releases whatever the services hold open.
type Factory func(ctx context.Context, clock services.Clock) (*services.Services, func(), error)

// RootOptions holds global flags
type RootOptions struct {
	AsOf     string
	Timezone string
	Timeout  time.Duration
}

// sweepAliases maps command arguments onto sweep job names
var sweepAliases = map[string]string{
	"overdue":   services.JobOverdueSweep,
	"monthly":   services.JobMonthlyPricing,
	"mid-month": services.JobMidMonthPricing,
	"leases":    services.JobLeaseExpiry,
}

// NewRootCommand creates leasectl with every subcommand. timezone is the
// default for --timezone.
func NewRootCommand(factory Factory, timezone string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "leasectl",
		Short:         "Rural lease installment engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.AsOf, "as-of", "", "run as if today were this date (YYYY-MM-DD)")
	pf.StringVar(&opts.Timezone, "timezone", timezone, "timezone that defines the current date")
	pf.DurationVar(&opts.Timeout, "timeout", 10*time.Minute, "operation timeout")

	cmd.AddCommand(newSweepCmd(factory, opts))
	cmd.AddCommand(newScheduleCmd(factory, opts))
	cmd.AddCommand(newPriceCmd(factory, opts))
	cmd.AddCommand(newInvoiceCmd(factory, opts))

	return cmd
}

func newSweepCmd(factory Factory, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "sweep overdue|monthly|mid-month|leases",
		Short:     "Run a batch sweep",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"overdue", "monthly", "mid-month", "leases"},
		RunE: func(cmd *cobra.Command, args []string) error {
			job, ok := sweepAliases[args[0]]
			if !ok {
				return fmt.Errorf("unknown sweep %q (must be overdue, monthly, mid-month or leases)", args[0])
			}
			return run(cmd, factory, opts, func(ctx context.Context, svcs *services.Services) (any, error) {
				return svcs.Sweep.Run(ctx, job)
			})
		},
	}
}

func newScheduleCmd(factory Factory, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <lease-id>",
		Short: "Generate the installments of a lease",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, factory, opts, func(ctx context.Context, svcs *services.Services) (any, error) {
				payments, err := svcs.Schedule.Generate(ctx, id)
				if err != nil {
					return nil, err
				}
				out := make([]models.PaymentResponse, 0, len(payments))
				for i := range payments {
					out = append(out, payments[i].ToResponse())
				}
				return out, nil
			})
		},
	}
}

func newPriceCmd(factory Factory, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "price <payment-id>",
		Short: "Price a quantity-based installment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, factory, opts, func(ctx context.Context, svcs *services.Services) (any, error) {
				payment, err := svcs.Payment.PriceInstallment(ctx, id)
				if err != nil {
					return nil, err
				}
				return payment.ToResponse(), nil
			})
		},
	}
}

func newInvoiceCmd(factory Factory, opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "invoice <payment-id>",
		Short: "Invoice a priced installment and mark it paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return run(cmd, factory, opts, func(ctx context.Context, svcs *services.Services) (any, error) {
				invoice, err := svcs.Payment.Invoice(ctx, id)
				if err != nil {
					return nil, err
				}
				return invoice.ToResponse(), nil
			})
		},
	}
}

// run builds the services for opts, runs fn and prints its result as JSON
func run(cmd *cobra.Command, factory Factory, opts *RootOptions, fn func(context.Context, *services.Services) (any, error)) error {
	clock, err := opts.clock()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
	defer cancel()
	ctx = services.WithActor(ctx, models.ActorCLI)

	svcs, closeFn, err := factory(ctx, clock)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := fn(ctx, svcs)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

// clock returns a fixed clock at noon of --as-of, or the wall clock
func (o *RootOptions) clock() (services.Clock, error) {
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", o.Timezone, err)
	}
	if o.AsOf == "" {
		return services.SystemClock{Location: loc}, nil
	}
	day, err := time.ParseInLocation(models.DateLayout, o.AsOf, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid --as-of %q: use YYYY-MM-DD", o.AsOf)
	}
	return services.FixedClock{At: day.Add(12 * time.Hour)}, nil
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(id), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
