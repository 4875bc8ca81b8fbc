package services

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/changegraph/internal/app/loan/contracts"
	"github.com/light-bringer/changegraph/internal/app/loan/queries/list_changes"
	"github.com/light-bringer/changegraph/internal/app/loan/repo"
	"github.com/light-bringer/changegraph/internal/app/loan/usecases/create_loan"
	"github.com/light-bringer/changegraph/internal/app/loan/usecases/sync_loan"
	"github.com/light-bringer/changegraph/internal/pkg/clock"
	"github.com/light-bringer/changegraph/internal/pkg/committer"
)

// ServiceOptions holds the wired loan use cases.
type ServiceOptions struct {
	SpannerClient *spanner.Client
	Clock         clock.Clock

	Loans       contracts.LoanRepository
	CreateLoan  *create_loan.Interactor
	SyncLoan    *sync_loan.Interactor
	ListChanges *list_changes.Query
}

// NewServiceOptions connects to spannerDB and wires every dependency.
func NewServiceOptions(ctx context.Context, spannerDB string) (*ServiceOptions, error) {
	spannerClient, err := spanner.NewClient(ctx, spannerDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spanner client: %w", err)
	}
	return NewServiceOptionsWithClient(spannerClient), nil
}

// NewServiceOptionsWithClient wires the use cases around an existing client.
func NewServiceOptionsWithClient(spannerClient *spanner.Client) *ServiceOptions {
	comm := committer.NewCommitter(spannerClient)

	loanRepo := repo.NewLoanRepo(spannerClient)
	changeRepo := repo.NewChangeRepo(spannerClient)

	return &ServiceOptions{
		SpannerClient: spannerClient,
		Clock:         clock.NewRealClock(),
		Loans:         loanRepo,
		CreateLoan:    create_loan.NewInteractor(loanRepo, comm),
		SyncLoan:      sync_loan.NewInteractor(loanRepo, changeRepo, comm),
		ListChanges:   list_changes.NewQuery(changeRepo),
	}
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.SpannerClient != nil {
		s.SpannerClient.Close()
	}
}
