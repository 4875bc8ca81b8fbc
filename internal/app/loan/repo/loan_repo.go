package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/light-bringer/changegraph/internal/app/loan/contracts"
	"github.com/light-bringer/changegraph/internal/app/loan/domain"
	"github.com/light-bringer/changegraph/internal/models/m_loan"
	"github.com/light-bringer/changegraph/internal/pkg/graph"
	"github.com/light-bringer/changegraph/internal/pkg/patch"
)

// LoanRepo stores loans in Spanner. Scalar members have their own columns;
// the whole graph is kept as a JSON document next to the last partial
// update that was sent.
type LoanRepo struct {
	client *spanner.Client
	model  *m_loan.Model
}

func NewLoanRepo(client *spanner.Client) contracts.LoanRepository {
	return &LoanRepo{client: client, model: m_loan.NewModel()}
}

func (r *LoanRepo) InsertMut(loan *domain.Loan) (*spanner.Mutation, error) {
	id, err := loan.LoanID()
	if err != nil {
		return nil, fmt.Errorf("insert loan: %w", err)
	}
	doc, err := patch.Full(loan)
	if err != nil {
		return nil, fmt.Errorf("render loan %s: %w", id, err)
	}
	raw, err := protojson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal loan %s: %w", id, err)
	}
	return r.model.InsertMut(&m_loan.Data{
		LoanID:                  id,
		LoanAmount:              numeric(loan.LoanAmount()),
		CurrentApplicationIndex: int64(loan.CurrentApplicationIndex()),
		DocumentJSON:            spanner.NullString{StringVal: string(raw), Valid: true},
		Version:                 loan.Version(),
	}), nil
}

// UpdateMut writes the dirty scalar columns, the partial update document
// and the next version. The stored document is rewritten when a relationship
// changed.
func (r *LoanRepo) UpdateMut(loan *domain.Loan) (*spanner.Mutation, error) {
	if !loan.Dirty() {
		return nil, nil
	}
	id, err := loan.LoanID()
	if err != nil {
		return nil, fmt.Errorf("update loan: %w", err)
	}

	updates := make(map[string]any)
	related := false
	for f := range graph.DirtyFields(loan) {
		switch f.Name() {
		case "LoanAmount":
			updates[m_loan.LoanAmount] = numeric(loan.LoanAmount())
		case "CurrentApplicationIndex":
			updates[m_loan.CurrentApplicationIndex] = int64(loan.CurrentApplicationIndex())
		case "Applications", "ClosingCost", "FieldLocks", "CustomFields":
			related = true
		}
	}
	// Relationships only live in the document.
	if related {
		doc, err := patch.Full(loan)
		if err != nil {
			return nil, fmt.Errorf("render loan %s: %w", id, err)
		}
		raw, err := protojson.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal loan %s: %w", id, err)
		}
		updates[m_loan.DocumentJSON] = spanner.NullString{StringVal: string(raw), Valid: true}
	}

	raw, err := patch.Marshal(loan)
	if err != nil {
		return nil, fmt.Errorf("patch loan %s: %w", id, err)
	}
	updates[m_loan.LastPatchJSON] = spanner.NullString{StringVal: string(raw), Valid: true}
	updates[m_loan.Version] = loan.Version() + 1

	return r.model.UpdateMut(id, updates), nil
}

func (r *LoanRepo) GetByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	row, err := r.client.Single().ReadRow(ctx, m_loan.TableName, spanner.Key{loanID}, m_loan.Columns)
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, fmt.Errorf("loan %s: %w", loanID, domain.ErrLoanNotFound)
		}
		return nil, fmt.Errorf("read loan %s: %w", loanID, err)
	}
	var data m_loan.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("decode loan %s: %w", loanID, err)
	}
	return dataToDomain(&data)
}

func (r *LoanRepo) GetVersion(ctx context.Context, loanID string) (int64, error) {
	row, err := r.client.Single().ReadRow(ctx, m_loan.TableName, spanner.Key{loanID}, []string{m_loan.Version})
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return 0, fmt.Errorf("loan %s: %w", loanID, domain.ErrLoanNotFound)
		}
		return 0, fmt.Errorf("read loan %s version: %w", loanID, err)
	}
	var version int64
	if err := row.Column(0, &version); err != nil {
		return 0, fmt.Errorf("decode loan %s version: %w", loanID, err)
	}
	return version, nil
}

func dataToDomain(data *m_loan.Data) (*domain.Loan, error) {
	snap := domain.Snapshot{
		ID:                      data.LoanID,
		CurrentApplicationIndex: int(data.CurrentApplicationIndex),
		LastModified:            data.UpdatedAt,
		Version:                 data.Version,
	}
	if data.LoanAmount.Valid {
		snap.LoanAmount = domain.NewMoneyFromRat(&data.LoanAmount.Numeric)
	}
	if data.DocumentJSON.Valid {
		if err := decodeDocument([]byte(data.DocumentJSON.StringVal), &snap); err != nil {
			return nil, fmt.Errorf("loan %s document: %w", data.LoanID, err)
		}
	}
	return domain.ReconstructLoan(snap), nil
}

func numeric(m *domain.Money) spanner.NullNumeric {
	if m == nil {
		return spanner.NullNumeric{}
	}
	return spanner.NullNumeric{Numeric: *m.Rat(), Valid: true}
}
