// Command changewatch builds a loan, records its modifications and prints
// the partial update they produce. Unless -dry-run is set, the loan and its
// change journal are written to Spanner.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/golang/glog"

	"github.com/light-bringer/changegraph/internal/app/loan/domain"
	"github.com/light-bringer/changegraph/internal/app/loan/usecases/create_loan"
	"github.com/light-bringer/changegraph/internal/app/loan/usecases/sync_loan"
	"github.com/light-bringer/changegraph/internal/pkg/audit"
	"github.com/light-bringer/changegraph/internal/pkg/clock"
	"github.com/light-bringer/changegraph/internal/pkg/patch"
	"github.com/light-bringer/changegraph/internal/services"
)

var (
	dryRun = flag.Bool("dry-run", false, "print the partial update without writing it")
	loanID = flag.String("loan", "L-demo", "loan id to use")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := run(context.Background(), loadConfig(), os.Stdout); err != nil {
		glog.Exitf("changewatch: %v", err)
	}
}

// Config holds the environment configuration.
type Config struct {
	SpannerDB string
	Filters   []string
	LoanID    string
	DryRun    bool
}

func loadConfig() Config {
	spannerDB := os.Getenv("SPANNER_DATABASE")
	if spannerDB == "" {
		// Default for local development with emulator
		spannerDB = "projects/test-project/instances/dev-instance/databases/changegraph-db"
	}
	return Config{
		SpannerDB: spannerDB,
		Filters:   parseFilters(os.Getenv("CHANGEWATCH_FILTER")),
		LoanID:    *loanID,
		DryRun:    *dryRun,
	}
}

// parseFilters splits a comma separated list of attribute path patterns.
func parseFilters(s string) []string {
	var out []string
	for f := range strings.SplitSeq(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func run(ctx context.Context, cfg Config, out io.Writer) error {
	var svc *services.ServiceOptions
	if !cfg.DryRun {
		var err error
		svc, err = services.NewServiceOptions(ctx, cfg.SpannerDB)
		if err != nil {
			return err
		}
		defer svc.Close()
	}

	loan := domain.NewLoan()
	if svc != nil {
		if err := svc.CreateLoan.Execute(ctx, &create_loan.Request{LoanID: cfg.LoanID, Loan: loan}); err != nil {
			return err
		}
	} else if err := loan.Initialize(cfg.LoanID); err != nil {
		return err
	}

	filters := domain.NewWebhookFilters(cfg.Filters...)
	journal, err := audit.NewJournal(loan, clock.NewRealClock(),
		audit.WithPathPrefix(domain.RootName+"."),
		audit.WithFilter(slices.Collect(filters.Attributes().Values())...))
	if err != nil {
		return err
	}
	defer journal.Close()

	sub, err := loan.OnFieldChange(func(c domain.FieldChange) {
		if filters.Matches(c.AttributePath) {
			glog.Infof("%s %s: %v -> %v", c.Action, c.ModelPath, c.Prior, c.Next)
		}
	})
	if err != nil {
		return err
	}
	defer sub.Close()

	if err := modify(loan); err != nil {
		return err
	}

	raw, err := patch.Marshal(loan)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", raw)
	for _, e := range journal.Entries() {
		fmt.Fprintf(out, "%s\t%s\t%s\n", e.Action, e.Path, e.AttributePath)
	}

	if svc == nil {
		return nil
	}
	resp, err := svc.SyncLoan.Execute(ctx, &sync_loan.Request{Loan: loan, Journal: journal})
	if err != nil {
		return err
	}
	glog.Infof("loan %s stored at version %d with %d changes", cfg.LoanID, resp.Version, resp.Changes)
	return nil
}

// modify applies a representative set of edits through the typed and the
// path based APIs.
func modify(loan *domain.Loan) error {
	if err := loan.SetLoanAmount(domain.MustMoney(350000)); err != nil {
		return err
	}
	borrower := loan.CurrentApplication().Borrower()
	if err := borrower.SetFirstName("Grace"); err != nil {
		return err
	}
	if err := borrower.SetLastName("Hopper"); err != nil {
		return err
	}
	// Path resolution does not create missing children.
	loan.ClosingCost()
	for path, value := range map[string]any{
		"Loan.ClosingCost.Amount":  "4250.50",
		"Loan.ClosingCost.Program": "FHA",
	} {
		f, err := loan.Field(path)
		if err != nil {
			return err
		}
		if err := f.SetValue(value); err != nil {
			return err
		}
	}
	f, err := loan.Field("Loan.LoanAmount")
	if err != nil {
		return err
	}
	if err := f.SetLocked(true); err != nil {
		return err
	}
	loan.CustomFields().Set("CX.Channel", "retail")
	return nil
}
