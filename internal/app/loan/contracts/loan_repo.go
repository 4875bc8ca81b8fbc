package contracts

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/changegraph/internal/app/loan/domain"
	"github.com/light-bringer/changegraph/internal/pkg/audit"
)

// LoanRepository persists loans. Mutations are returned, never applied.
type LoanRepository interface {
	// InsertMut writes the complete loan document.
	InsertMut(loan *domain.Loan) (*spanner.Mutation, error)

	// UpdateMut writes only what changed since the last commit, or returns
	// nil for a clean loan.
	UpdateMut(loan *domain.Loan) (*spanner.Mutation, error)

	GetByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// GetVersion reads the stored version for optimistic locking.
	GetVersion(ctx context.Context, loanID string) (int64, error)
}

// ChangeRecord is a persisted audit entry with decoded values.
type ChangeRecord struct {
	ChangeID      string
	ModelPath     string
	AttributePath string
	Action        string
	Prior         any
	Next          any
	RecordedAt    time.Time
	CommittedAt   time.Time
}

// ChangeRepository persists the change journal of loans.
type ChangeRepository interface {
	InsertMut(entry audit.Entry) (*spanner.Mutation, error)

	// ListChanges returns the changes of a loan in record order, limited to
	// model paths starting with pathPrefix when it is not empty.
	ListChanges(ctx context.Context, loanID, pathPrefix string) ([]*ChangeRecord, error)
}
