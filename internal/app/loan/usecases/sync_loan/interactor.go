package sync_loan

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/golang/glog"

	"github.com/light-bringer/changegraph/internal/app/loan/contracts"
	"github.com/light-bringer/changegraph/internal/app/loan/domain"
	"github.com/light-bringer/changegraph/internal/models/m_loan"
	"github.com/light-bringer/changegraph/internal/pkg/audit"
	"github.com/light-bringer/changegraph/internal/pkg/committer"
)

// Request names the loan to synchronize and, optionally, the journal that
// recorded its changes.
type Request struct {
	Loan    *domain.Loan
	Journal *audit.Journal
}

// Response reports what was written.
type Response struct {
	Version int64
	Changes int
	Written bool
}

// Interactor writes the modified subset of a loan together with its journal
// in one transaction guarded by the loan version.
type Interactor struct {
	loans   contracts.LoanRepository
	changes contracts.ChangeRepository
	applier committer.VersionedApplier
}

func NewInteractor(
	loans contracts.LoanRepository,
	changes contracts.ChangeRepository,
	applier committer.VersionedApplier,
) *Interactor {
	return &Interactor{
		loans:   loans,
		changes: changes,
		applier: applier,
	}
}

func (i *Interactor) Execute(ctx context.Context, req *Request) (*Response, error) {
	loan := req.Loan
	loanID, err := loan.LoanID()
	if err != nil {
		return nil, fmt.Errorf("sync loan: %w", err)
	}

	plan := committer.NewPlan()
	loanMut, err := i.loans.UpdateMut(loan)
	if err != nil {
		return nil, err
	}
	plan.Add(loanMut)

	var entries []audit.Entry
	if req.Journal != nil {
		entries = req.Journal.Entries()
	}
	for _, e := range entries {
		mut, err := i.changes.InsertMut(e)
		if err != nil {
			return nil, err
		}
		plan.Add(mut)
	}

	resp := &Response{Version: loan.Version(), Changes: len(entries)}
	if plan.IsEmpty() {
		return resp, nil
	}

	check := committer.VersionCheck{
		Table:    m_loan.TableName,
		Key:      spanner.Key{loanID},
		Column:   m_loan.Version,
		Expected: loan.Version(),
	}
	if err := i.applier.ApplyWithVersionCheck(ctx, check, plan); err != nil {
		return nil, fmt.Errorf("sync loan %s: %w", loanID, err)
	}

	if loanMut != nil {
		loan.Committed(loan.Version() + 1)
	}
	if req.Journal != nil {
		req.Journal.Truncate(len(entries))
	}
	resp.Version = loan.Version()
	resp.Written = true
	glog.V(1).Infof("synced loan %s at version %d with %d changes", loanID, resp.Version, resp.Changes)
	return resp, nil
}
