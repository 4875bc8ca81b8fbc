package m_change

import "cloud.google.com/go/spanner"

type Model struct{}

func NewModel() *Model {
	return &Model{}
}

// InsertMut appends one change. Changes are immutable, so there is no
// update mutation.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns, []any{
		data.LoanID,
		data.ChangeID,
		data.ModelPath,
		data.AttributePath,
		data.Action,
		data.PriorJSON,
		data.NextJSON,
		data.RecordedAt,
		spanner.CommitTimestamp,
	})
}
