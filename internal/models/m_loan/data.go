package m_loan

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data is one row of the loans table.
type Data struct {
	LoanID                  string              `spanner:"loan_id"`
	LoanAmount              spanner.NullNumeric `spanner:"loan_amount"`
	CurrentApplicationIndex int64               `spanner:"current_application_index"`
	DocumentJSON            spanner.NullString  `spanner:"document_json"`
	LastPatchJSON           spanner.NullString  `spanner:"last_patch_json"`
	Version                 int64               `spanner:"version"`
	CreatedAt               time.Time           `spanner:"created_at"`
	UpdatedAt               time.Time           `spanner:"updated_at"`
}
