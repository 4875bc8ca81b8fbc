package create_loan

import (
	"context"
	"fmt"

	"github.com/light-bringer/changegraph/internal/app/loan/contracts"
	"github.com/light-bringer/changegraph/internal/app/loan/domain"
	"github.com/light-bringer/changegraph/internal/pkg/committer"
)

// Request carries a loan built in memory and the id to store it under.
type Request struct {
	LoanID string
	Loan   *domain.Loan
}

// Interactor stores a new loan document.
type Interactor struct {
	loans   contracts.LoanRepository
	applier committer.Applier
}

func NewInteractor(loans contracts.LoanRepository, applier committer.Applier) *Interactor {
	return &Interactor{loans: loans, applier: applier}
}

// Execute binds the loan to req.LoanID, writes it in full and leaves it
// clean so later modifications are tracked from the stored state.
func (i *Interactor) Execute(ctx context.Context, req *Request) error {
	if err := req.Loan.Initialize(req.LoanID); err != nil {
		return fmt.Errorf("create loan: %w", err)
	}
	mut, err := i.loans.InsertMut(req.Loan)
	if err != nil {
		return err
	}
	plan := committer.NewPlan()
	plan.Add(mut)
	if err := i.applier.Apply(ctx, plan); err != nil {
		return fmt.Errorf("create loan %s: %w", req.LoanID, err)
	}
	req.Loan.Committed(req.Loan.Version())
	return nil
}
