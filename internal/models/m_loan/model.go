package m_loan

import (
	"slices"

	"cloud.google.com/go/spanner"
)

// Model builds mutations for the loans table.
type Model struct{}

func NewModel() *Model {
	return &Model{}
}

// InsertMut writes a complete row. Both timestamps take the commit time.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(TableName, Columns, []any{
		data.LoanID,
		data.LoanAmount,
		data.CurrentApplicationIndex,
		data.DocumentJSON,
		data.LastPatchJSON,
		data.Version,
		spanner.CommitTimestamp,
		spanner.CommitTimestamp,
	})
}

// UpdateMut writes the given columns of one loan and stamps updated_at.
// Columns are emitted in sorted order. Empty updates yield nil.
func (m *Model) UpdateMut(loanID string, updates map[string]any) *spanner.Mutation {
	if len(updates) == 0 {
		return nil
	}
	cols := make([]string, 0, len(updates)+1)
	for col := range updates {
		if col != LoanID && col != UpdatedAt {
			cols = append(cols, col)
		}
	}
	slices.Sort(cols)

	columns := append([]string{LoanID}, cols...)
	values := []any{loanID}
	for _, col := range cols {
		values = append(values, updates[col])
	}
	columns = append(columns, UpdatedAt)
	values = append(values, spanner.CommitTimestamp)

	return spanner.Update(TableName, columns, values)
}
