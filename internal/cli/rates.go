package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/storefront/internal/config"
	"github.com/mrlokans/storefront/internal/currency"
)

// RatesOptions holds flags for the rates command.
type RatesOptions struct {
	APIURL  string
	Amount  float64
	Timeout time.Duration
}

// NewRatesCommand creates the rates command.
func NewRatesCommand() *cobra.Command {
	opts := &RatesOptions{}

	cmd := &cobra.Command{
		Use:   "rates <currency>",
		Short: "Fetch one exchange rate and show a converted amount",
		Long: `Fetch the current USD exchange rate for a currency from the rates API
and print the rate together with --amount converted into that currency.

Example:
  storefront rates EUR
  storefront rates TRY --amount 49.90`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRates(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.APIURL, "url", "", "rates API base URL (default: CURRENCY_API_URL)")
	cmd.Flags().Float64Var(&opts.Amount, "amount", 1, "USD amount to convert")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "request timeout")

	return cmd
}

func runRates(cmd *cobra.Command, opts *RatesOptions, code string) error {
	cur, ok := currency.Lookup(code)
	if !ok {
		keys := make([]string, 0, len(currency.Currencies()))
		for _, c := range currency.Currencies() {
			keys = append(keys, c.Key)
		}
		return fmt.Errorf("%w: %q (supported: %s)", currency.ErrInvalidSelection, code, strings.Join(keys, ", "))
	}

	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = config.NewConfig().Currency.APIURL
	}

	rate := 1.0
	if cur.Key != currency.BaseKey {
		ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
		defer cancel()

		var err error
		rate, err = currency.NewRatesClient(apiURL, opts.Timeout).FetchRate(ctx, cur.Key)
		if err != nil {
			return fmt.Errorf("fetch %s rate: %w", cur.Key, err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "1 %s = %g %s\n", currency.BaseKey, rate, cur.Key)
	fmt.Fprintf(out, "%s = %s\n", currency.FormatAmount(opts.Amount, currency.Base()), currency.FormatAmount(opts.Amount*rate, cur))
	return nil
}
