package list_changes

import (
	"context"

	"github.com/light-bringer/changegraph/internal/app/loan/contracts"
)

// Request selects the changes of one loan, optionally below a model path
// such as "Loan.Applications".
type Request struct {
	LoanID     string
	PathPrefix string
}

type Query struct {
	changes contracts.ChangeRepository
}

func NewQuery(changes contracts.ChangeRepository) *Query {
	return &Query{changes: changes}
}

func (q *Query) Execute(ctx context.Context, req *Request) ([]*contracts.ChangeRecord, error) {
	return q.changes.ListChanges(ctx, req.LoanID, req.PathPrefix)
}
