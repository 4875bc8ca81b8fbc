package domain

import (
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
	"github.com/light-bringer/changegraph/internal/pkg/graph"
)

// Borrower is one party of an application.
type Borrower struct {
	graph.Node
	firstName   dirty.Value[string]
	lastName    dirty.Value[string]
	taxID       dirty.Value[string]
	creditScore dirty.Value[int]
}

var borrowerSchema = graph.MustSchema("Borrower", []graph.Field{
	graph.Scalar("FirstName", func(b *Borrower) *dirty.Value[string] { return &b.firstName }),
	graph.Scalar("LastName", func(b *Borrower) *dirty.Value[string] { return &b.lastName }),
	graph.Scalar("TaxId", func(b *Borrower) *dirty.Value[string] { return &b.taxID }),
	// Reported by the credit bureau, never written by clients.
	graph.Scalar("CreditScore", func(b *Borrower) *dirty.Value[int] { return &b.creditScore }, graph.ReadOnly()),
})

func NewBorrower() *Borrower {
	b := &Borrower{}
	graph.Init(b, borrowerSchema)
	return b
}

// ReconstructBorrower rebuilds a stored borrower with clean state.
func ReconstructBorrower(firstName, lastName, taxID string, creditScore int) *Borrower {
	b := &Borrower{
		firstName:   dirty.NewValue(firstName),
		lastName:    dirty.NewValue(lastName),
		taxID:       dirty.NewValue(taxID),
		creditScore: dirty.NewValue(creditScore),
	}
	graph.Init(b, borrowerSchema)
	return b
}

func (b *Borrower) FirstName() string { return b.firstName.Get() }
func (b *Borrower) LastName() string  { return b.lastName.Get() }
func (b *Borrower) TaxID() string     { return b.taxID.Get() }
func (b *Borrower) CreditScore() int  { return b.creditScore.Get() }

func (b *Borrower) SetFirstName(s string) error {
	return graph.Set(&b.Node, &b.firstName, "FirstName", s)
}

func (b *Borrower) SetLastName(s string) error {
	return graph.Set(&b.Node, &b.lastName, "LastName", s)
}

func (b *Borrower) SetTaxID(s string) error {
	return graph.Set(&b.Node, &b.taxID, "TaxId", s)
}
