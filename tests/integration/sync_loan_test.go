//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/changegraph/internal/app/loan/domain"
	"github.com/light-bringer/changegraph/internal/app/loan/queries/list_changes"
	"github.com/light-bringer/changegraph/internal/app/loan/usecases/create_loan"
	"github.com/light-bringer/changegraph/internal/app/loan/usecases/sync_loan"
	"github.com/light-bringer/changegraph/internal/pkg/audit"
	"github.com/light-bringer/changegraph/internal/pkg/committer"
	"github.com/light-bringer/changegraph/internal/services"
	"github.com/light-bringer/changegraph/tests/testutil"
)

func TestSyncLoan_PersistsJournal(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	ctx := context.Background()
	svc := services.NewServiceOptionsWithClient(client)

	loan := domain.NewLoan()
	require.NoError(t, loan.SetLoanAmount(domain.MustMoney(150000)))
	require.NoError(t, svc.CreateLoan.Execute(ctx, &create_loan.Request{LoanID: "L-sync", Loan: loan}))

	j, err := audit.NewJournal(loan, testutil.NewMockClock(), audit.WithPathPrefix(domain.RootName+"."))
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, loan.CurrentApplication().Borrower().SetFirstName("Grace"))
	require.NoError(t, loan.SetLoanAmount(domain.MustMoney(160000)))

	resp, err := svc.SyncLoan.Execute(ctx, &sync_loan.Request{Loan: loan, Journal: j})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Version)
	assert.Zero(t, j.Len())

	all, err := svc.ListChanges.Execute(ctx, &list_changes.Request{LoanID: "L-sync"})
	require.NoError(t, err)
	require.Len(t, all, resp.Changes)

	amount, err := svc.ListChanges.Execute(ctx, &list_changes.Request{LoanID: "L-sync", PathPrefix: "Loan.LoanAmount"})
	require.NoError(t, err)
	require.Len(t, amount, 1)
	assert.Equal(t, "150000.00", amount[0].Prior)
	assert.Equal(t, "160000.00", amount[0].Next)
	assert.Equal(t, "replace", amount[0].Action)

	reloaded, err := svc.Loans.GetByID(ctx, "L-sync")
	require.NoError(t, err)
	assert.Equal(t, "160000.00", reloaded.LoanAmount().String())
	assert.Equal(t, "Grace", reloaded.CurrentApplication().Borrower().FirstName())
}

func TestSyncLoan_RelationshipChangeSurvivesReload(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	ctx := context.Background()
	svc := services.NewServiceOptionsWithClient(client)
	loanID := testutil.CreateTestLoan(t, client)

	loan, err := svc.Loans.GetByID(ctx, loanID)
	require.NoError(t, err)
	require.NoError(t, loan.CurrentApplication().Borrower().SetFirstName("Grace"))
	loan.CustomFields().Set("CX.Channel", "retail")

	_, err = svc.SyncLoan.Execute(ctx, &sync_loan.Request{Loan: loan})
	require.NoError(t, err)

	reloaded, err := svc.Loans.GetByID(ctx, loanID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", reloaded.CurrentApplication().Borrower().FirstName())
	channel, ok := reloaded.CustomFields().TryGet("CX.Channel")
	assert.True(t, ok)
	assert.Equal(t, "retail", channel)
}

func TestSyncLoan_VersionConflict(t *testing.T) {
	client, cleanup := testutil.SetupSpannerTest(t)
	defer cleanup()

	ctx := context.Background()
	svc := services.NewServiceOptionsWithClient(client)
	loanID := testutil.CreateTestLoan(t, client)

	first, err := svc.Loans.GetByID(ctx, loanID)
	require.NoError(t, err)
	second, err := svc.Loans.GetByID(ctx, loanID)
	require.NoError(t, err)

	require.NoError(t, first.SetLoanAmount(domain.MustMoney(1)))
	_, err = svc.SyncLoan.Execute(ctx, &sync_loan.Request{Loan: first})
	require.NoError(t, err)

	require.NoError(t, second.SetLoanAmount(domain.MustMoney(2)))
	_, err = svc.SyncLoan.Execute(ctx, &sync_loan.Request{Loan: second})
	assert.ErrorIs(t, err, committer.ErrVersionConflict)
}
