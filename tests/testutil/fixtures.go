package testutil

import (
	"context"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/changegraph/internal/app/loan/domain"
	"github.com/light-bringer/changegraph/internal/app/loan/repo"
)

// NewTestLoan builds an unsaved loan with one application and a closing
// cost, bound to a fresh id.
func NewTestLoan(t *testing.T) *domain.Loan {
	t.Helper()

	return domain.ReconstructLoan(domain.Snapshot{
		ID:         uuid.NewString(),
		LoanAmount: domain.MustMoney(200000),
		Applications: []*domain.Application{
			domain.ReconstructApplication("app-1", 0, domain.ReconstructBorrower("Ada", "Lovelace", "111-22-3333", 780), nil),
		},
		ClosingCost: domain.ReconstructClosingCost("cc-1", domain.MustMoney(3000), "CONV"),
	})
}

// CreateTestLoan stores NewTestLoan and returns its id.
func CreateTestLoan(t *testing.T, client *spanner.Client) string {
	t.Helper()

	loan := NewTestLoan(t)
	mut, err := repo.NewLoanRepo(client).InsertMut(loan)
	require.NoError(t, err)

	_, err = client.Apply(context.Background(), []*spanner.Mutation{mut})
	require.NoError(t, err, "failed to create test loan")
	return loan.ID()
}
