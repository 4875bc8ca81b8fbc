package m_loan

// Column names of the loans table.
const (
	TableName = "loans"

	LoanID                  = "loan_id"
	LoanAmount              = "loan_amount"
	CurrentApplicationIndex = "current_application_index"
	DocumentJSON            = "document_json"
	LastPatchJSON           = "last_patch_json"
	Version                 = "version"
	CreatedAt               = "created_at"
	UpdatedAt               = "updated_at"
)

// Columns lists every column in table order.
var Columns = []string{
	LoanID,
	LoanAmount,
	CurrentApplicationIndex,
	DocumentJSON,
	LastPatchJSON,
	Version,
	CreatedAt,
	UpdatedAt,
}
