package m_change

// Column names of the loan_changes table, interleaved in loans.
const (
	TableName = "loan_changes"

	LoanID        = "loan_id"
	ChangeID      = "change_id"
	ModelPath     = "model_path"
	AttributePath = "attribute_path"
	Action        = "action"
	PriorJSON     = "prior_json"
	NextJSON      = "next_json"
	RecordedAt    = "recorded_at"
	CommittedAt   = "committed_at"
)

var Columns = []string{
	LoanID,
	ChangeID,
	ModelPath,
	AttributePath,
	Action,
	PriorJSON,
	NextJSON,
	RecordedAt,
	CommittedAt,
}
