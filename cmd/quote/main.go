package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sipcourse-backend/internal/plans"
)

func main() {
	duration := flag.Int("duration", 0, "plan length in months (3, 6, 9 or 12); 0 prints every tier")
	amount := flag.String("amount", "6", "daily contribution")
	flag.Parse()

	if err := run(os.Stdout, *duration, *amount); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(out io.Writer, months int, rawAmount string) error {
	amount, err := decimal.NewFromString(strings.TrimSpace(rawAmount))
	if err != nil {
		return fmt.Errorf("invalid -amount %q: %w", rawAmount, err)
	}

	durations := plans.Durations()
	if months != 0 {
		d, err := plans.ParseDuration(months)
		if err != nil {
			return err
		}
		durations = []plans.Duration{d}
	}

	projections := make([]plans.Projection, 0, len(durations))
	for _, d := range durations {
		p, err := plans.ComputeProjection(d, amount)
		if err != nil {
			return err
		}
		projections = append(projections, p)
	}
	return writeTable(out, projections)
}

func writeTable(out io.Writer, projections []plans.Projection) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAN\tDAILY\tPRINCIPAL\tRATE\tREWARD\tFINAL\tADS\tACCESS\tCERTIFIED")
	for _, p := range projections {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s%%\t%s\t%s\t%s\t%s\t%s\n",
			p.Duration.Label(),
			p.DailyAmount.StringFixed(2),
			p.Principal.StringFixed(2),
			p.RewardRate.Shift(2).String(),
			p.RewardAmount.StringFixed(2),
			p.FinalValue.StringFixed(2),
			yesNo(p.AdsVisible),
			p.DomainAccessLabel(),
			yesNo(p.CertificationIncluded),
		)
	}
	return tw.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
