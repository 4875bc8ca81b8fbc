package domain

import (
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
	"github.com/light-bringer/changegraph/internal/pkg/graph"
)

// Application is a borrower pair on a loan. ApplicationIndex orders the
// pairs; the loan's CurrentApplicationIndex selects one of them.
type Application struct {
	graph.Node
	id               dirty.Value[string]
	applicationIndex dirty.Value[int]
	borrower         *Borrower
	coborrower       *Borrower
}

var applicationSchema = graph.MustSchema("Application", []graph.Field{
	graph.Scalar("Id", func(a *Application) *dirty.Value[string] { return &a.id }),
	graph.Scalar("ApplicationIndex", func(a *Application) *dirty.Value[int] { return &a.applicationIndex }),
	graph.Child("Borrower", func(a *Application) **Borrower { return &a.borrower }),
	graph.Child("Coborrower", func(a *Application) **Borrower { return &a.coborrower }),
}, graph.WithIDField("Id"))

// NewApplication returns a dirty application at index.
func NewApplication(id string, index int) *Application {
	a := &Application{
		id:               dirty.NewDirtyValue(id),
		applicationIndex: dirty.NewDirtyValue(index),
	}
	graph.Init(a, applicationSchema)
	return a
}

// ReconstructApplication rebuilds a stored application with clean state.
// Nil borrowers stay unset.
func ReconstructApplication(id string, index int, borrower, coborrower *Borrower) *Application {
	a := &Application{
		id:               dirty.NewValue(id),
		applicationIndex: dirty.NewValue(index),
		borrower:         borrower,
		coborrower:       coborrower,
	}
	graph.Init(a, applicationSchema)
	return a
}

func (a *Application) ID() string            { return a.id.Get() }
func (a *Application) ApplicationIndex() int { return a.applicationIndex.Get() }

// SetID renames the application. Lists holding it follow the new id.
func (a *Application) SetID(id string) error {
	return graph.Set(&a.Node, &a.id, "Id", id)
}

func (a *Application) SetApplicationIndex(i int) error {
	return graph.Set(&a.Node, &a.applicationIndex, "ApplicationIndex", i)
}

// Borrower returns the primary borrower, creating an empty one when unset.
func (a *Application) Borrower() *Borrower {
	return graph.GetChild(&a.Node, &a.borrower, "Borrower", NewBorrower)
}

func (a *Application) SetBorrower(b *Borrower) error {
	return graph.SetChild(&a.Node, &a.borrower, "Borrower", b)
}

func (a *Application) Coborrower() *Borrower {
	return graph.GetChild(&a.Node, &a.coborrower, "Coborrower", NewBorrower)
}

func (a *Application) SetCoborrower(b *Borrower) error {
	return graph.SetChild(&a.Node, &a.coborrower, "Coborrower", b)
}
