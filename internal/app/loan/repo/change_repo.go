package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/light-bringer/changegraph/internal/app/loan/contracts"
	"github.com/light-bringer/changegraph/internal/models/m_change"
	"github.com/light-bringer/changegraph/internal/pkg/audit"
	"github.com/light-bringer/changegraph/internal/pkg/patch"
	"github.com/light-bringer/changegraph/internal/pkg/query"
)

// ChangeRepo stores journal entries in the loan_changes table. Prior and
// next values are kept as JSON.
type ChangeRepo struct {
	client *spanner.Client
	model  *m_change.Model
}

func NewChangeRepo(client *spanner.Client) contracts.ChangeRepository {
	return &ChangeRepo{client: client, model: m_change.NewModel()}
}

func (r *ChangeRepo) InsertMut(e audit.Entry) (*spanner.Mutation, error) {
	if e.EntityID == "" {
		return nil, fmt.Errorf("change %s has no loan id", e.ID)
	}
	prior, err := jsonValue(e.Prior)
	if err != nil {
		return nil, fmt.Errorf("change %s prior: %w", e.ID, err)
	}
	next, err := jsonValue(e.Next)
	if err != nil {
		return nil, fmt.Errorf("change %s next: %w", e.ID, err)
	}
	return r.model.InsertMut(&m_change.Data{
		LoanID:        e.EntityID,
		ChangeID:      e.ID.String(),
		ModelPath:     e.Path,
		AttributePath: e.AttributePath,
		Action:        e.Action.String(),
		PriorJSON:     prior,
		NextJSON:      next,
		RecordedAt:    e.RecordedAt,
	}), nil
}

// jsonValue renders scalars as JSON. Entities and collections, as set by
// whole-member assignments, are rendered in full.
func jsonValue(v any) (spanner.NullString, error) {
	if v == nil {
		return spanner.NullString{}, nil
	}
	pv, err := patch.Member(v)
	if err != nil {
		return spanner.NullString{}, err
	}
	raw, err := protojson.Marshal(pv)
	if err != nil {
		return spanner.NullString{}, err
	}
	return spanner.NullString{StringVal: string(raw), Valid: true}, nil
}

func (r *ChangeRepo) ListChanges(ctx context.Context, loanID, pathPrefix string) ([]*contracts.ChangeRecord, error) {
	q := query.From(m_change.TableName).
		Select(m_change.Columns...).
		Where(query.Eq(m_change.LoanID, loanID))
	if pathPrefix != "" {
		q = q.Where(query.StartsWith(m_change.ModelPath, pathPrefix))
	}
	stmt := q.OrderBy(m_change.RecordedAt, query.Asc).
		OrderBy(m_change.ChangeID, query.Asc).
		Build()

	it := r.client.Single().Query(ctx, stmt)
	defer it.Stop()

	var out []*contracts.ChangeRecord
	for {
		row, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list changes of %s: %w", loanID, err)
		}
		var data m_change.Data
		if err := row.ToStruct(&data); err != nil {
			return nil, fmt.Errorf("decode change of %s: %w", loanID, err)
		}
		rec, err := dataToRecord(&data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func dataToRecord(data *m_change.Data) (*contracts.ChangeRecord, error) {
	prior, err := decodeJSON(data.PriorJSON)
	if err != nil {
		return nil, fmt.Errorf("change %s prior: %w", data.ChangeID, err)
	}
	next, err := decodeJSON(data.NextJSON)
	if err != nil {
		return nil, fmt.Errorf("change %s next: %w", data.ChangeID, err)
	}
	return &contracts.ChangeRecord{
		ChangeID:      data.ChangeID,
		ModelPath:     data.ModelPath,
		AttributePath: data.AttributePath,
		Action:        data.Action,
		Prior:         prior,
		Next:          next,
		RecordedAt:    data.RecordedAt,
		CommittedAt:   data.CommittedAt,
	}, nil
}

func decodeJSON(s spanner.NullString) (any, error) {
	if !s.Valid {
		return nil, nil
	}
	v := &structpb.Value{}
	if err := protojson.Unmarshal([]byte(s.StringVal), v); err != nil {
		return nil, err
	}
	return v.AsInterface(), nil
}
