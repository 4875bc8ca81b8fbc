package m_change

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data is one recorded change of a loan.
type Data struct {
	LoanID        string             `spanner:"loan_id"`
	ChangeID      string             `spanner:"change_id"`
	ModelPath     string             `spanner:"model_path"`
	AttributePath string             `spanner:"attribute_path"`
	Action        string             `spanner:"action"`
	PriorJSON     spanner.NullString `spanner:"prior_json"`
	NextJSON      spanner.NullString `spanner:"next_json"`
	RecordedAt    time.Time          `spanner:"recorded_at"`
	CommittedAt   time.Time          `spanner:"committed_at"`
}
