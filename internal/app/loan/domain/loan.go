// Package domain holds the loan aggregate. Every entity embeds graph.Node,
// so modifications are tracked for minimal updates and reported to
// root listeners with their full path.
package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/light-bringer/changegraph/internal/pkg/changepath"
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
	"github.com/light-bringer/changegraph/internal/pkg/graph"
)

// RootName prefixes model paths of loan fields, e.g.
// Loan.CurrentApplication.Borrower.FirstName.
const RootName = "Loan"

const currentApplication = "CurrentApplication"

// Loan is the aggregate root.
type Loan struct {
	graph.Node
	id                      dirty.Value[string]
	loanAmount              dirty.Value[*Money]
	currentApplicationIndex dirty.Value[int]
	lastModified            dirty.Value[time.Time]
	applications            *dirty.List[*Application]
	closingCost             *ClosingCost
	fieldLocks              *dirty.List[*FieldLock]
	customFields            *dirty.Dictionary[string, string]

	// Computed server side and only ever read.
	virtualFields map[string]string

	version int64
	bound   bool
	current *Application
}

var loanSchema = graph.MustSchema(RootName, []graph.Field{
	graph.Scalar("Id", func(l *Loan) *dirty.Value[string] { return &l.id }),
	graph.Scalar("LoanAmount", func(l *Loan) *dirty.Value[*Money] { return &l.loanAmount }),
	graph.Scalar("CurrentApplicationIndex", func(l *Loan) *dirty.Value[int] { return &l.currentApplicationIndex }),
	graph.Scalar("LastModified", func(l *Loan) *dirty.Value[time.Time] { return &l.lastModified }, graph.Virtual()),
	graph.ListOf("Applications", func(l *Loan) **dirty.List[*Application] { return &l.applications }),
	graph.Child("ClosingCost", func(l *Loan) **ClosingCost { return &l.closingCost }),
	graph.ListOf("FieldLocks", func(l *Loan) **dirty.List[*FieldLock] { return &l.fieldLocks }),
	graph.MapOf("CustomFields", func(l *Loan) **dirty.Dictionary[string, string] { return &l.customFields }),
}, graph.WithIDField("Id"))

// NewLoan returns an unbound loan. Call Initialize before using the field
// APIs.
func NewLoan() *Loan {
	l := &Loan{}
	l.init()
	return l
}

// Snapshot is the stored state a loan is rebuilt from.
type Snapshot struct {
	ID                      string
	LoanAmount              *Money
	CurrentApplicationIndex int
	LastModified            time.Time
	Version                 int64
	Applications            []*Application
	ClosingCost             *ClosingCost
	FieldLocks              []*FieldLock
	CustomFields            map[string]string
	VirtualFields           map[string]string
}

// ReconstructLoan rebuilds a stored loan, bound to its id and clean.
func ReconstructLoan(s Snapshot) *Loan {
	l := &Loan{
		id:                      dirty.NewValue(s.ID),
		loanAmount:              dirty.NewValue(s.LoanAmount),
		currentApplicationIndex: dirty.NewValue(s.CurrentApplicationIndex),
		lastModified:            dirty.NewValue(s.LastModified),
		closingCost:             s.ClosingCost,
		virtualFields:           maps.Clone(s.VirtualFields),
		version:                 s.Version,
		bound:                   s.ID != "",
	}
	if s.Applications != nil {
		l.applications = dirty.NewListFrom(s.Applications)
	}
	if s.FieldLocks != nil {
		l.fieldLocks = dirty.NewListFrom(s.FieldLocks, fieldLockIdentity)
	}
	if s.CustomFields != nil {
		l.customFields = dirty.NewDictionary[string, string](dirty.WithKeyFolding())
		for _, k := range slices.Sorted(maps.Keys(s.CustomFields)) {
			l.customFields.Set(k, s.CustomFields[k])
		}
	}
	l.init()
	l.SetDirty(false)
	return l
}

// Field locks are addressed by model path regardless of spelling.
var fieldLockIdentity = dirty.WithIdentityNormalizer(changepath.Normalize)

func (l *Loan) init() {
	graph.Init(l, loanSchema)
	l.OnPropertyChanged(func(pc graph.PropertyChange) {
		switch pc.Name {
		case "CurrentApplicationIndex", "Applications":
			l.current = nil
		}
	})
}

// Initialize binds the loan to loanID. Binding again to the same id is a
// no-op; a different id fails with ErrLoanIDMismatch.
func (l *Loan) Initialize(loanID string) error {
	if loanID == "" {
		return ErrEmptyLoanID
	}
	cur := l.id.Get()
	if cur != "" && !strings.EqualFold(cur, loanID) {
		return fmt.Errorf("initialize %s as %s: %w", cur, loanID, ErrLoanIDMismatch)
	}
	if cur == "" {
		if err := graph.Set(&l.Node, &l.id, "Id", loanID); err != nil {
			return err
		}
		// The id is assigned by the server, not modified by the client.
		l.id.SetDirty(false)
	}
	l.bound = true
	return nil
}

func (l *Loan) Initialized() bool {
	return l.bound
}

// LoanID returns the bound id.
func (l *Loan) LoanID() (string, error) {
	if !l.bound {
		return "", ErrNotInitialized
	}
	return l.id.Get(), nil
}

func (l *Loan) ID() string                   { return l.id.Get() }
func (l *Loan) LoanAmount() *Money           { return l.loanAmount.Get() }
func (l *Loan) CurrentApplicationIndex() int { return l.currentApplicationIndex.Get() }
func (l *Loan) LastModified() time.Time      { return l.lastModified.Get() }
func (l *Loan) Version() int64               { return l.version }

func (l *Loan) SetLoanAmount(m *Money) error {
	return graph.Set(&l.Node, &l.loanAmount, "LoanAmount", m)
}

func (l *Loan) SetCurrentApplicationIndex(i int) error {
	return graph.Set(&l.Node, &l.currentApplicationIndex, "CurrentApplicationIndex", i)
}

func (l *Loan) Applications() *dirty.List[*Application] {
	return graph.GetList(&l.Node, &l.applications, "Applications")
}

func (l *Loan) SetApplications(apps []*Application) error {
	return graph.SetList(&l.Node, &l.applications, "Applications", apps)
}

// CurrentApplication returns the application whose index equals
// CurrentApplicationIndex, appending a new one when none matches.
func (l *Loan) CurrentApplication() *Application {
	apps := l.Applications()
	idx := l.CurrentApplicationIndex()
	if l.current != nil && apps.Contains(l.current) && l.current.ApplicationIndex() == idx {
		return l.current
	}
	for a := range apps.Values() {
		if a != nil && a.ApplicationIndex() == idx {
			l.current = a
			return a
		}
	}
	a := NewApplication("", idx)
	apps.Append(a)
	l.current = a
	return a
}

func (l *Loan) ClosingCost() *ClosingCost {
	return graph.GetChild(&l.Node, &l.closingCost, "ClosingCost", NewClosingCost)
}

func (l *Loan) SetClosingCost(c *ClosingCost) error {
	return graph.SetChild(&l.Node, &l.closingCost, "ClosingCost", c)
}

func (l *Loan) FieldLocks() *dirty.List[*FieldLock] {
	return graph.GetList(&l.Node, &l.fieldLocks, "FieldLocks", fieldLockIdentity)
}

// CustomFields maps custom field ids, case-insensitively, to raw values.
func (l *Loan) CustomFields() *dirty.Dictionary[string, string] {
	return graph.GetMap(&l.Node, &l.customFields, "CustomFields", dirty.WithKeyFolding())
}

// Committed records a successful synchronization: the stored version moved
// to version and every member is clean again.
func (l *Loan) Committed(version int64) {
	l.version = version
	l.SetDirty(false)
}

// FieldChange is a leaf modification reported to OnFieldChange listeners.
type FieldChange struct {
	ModelPath     string
	AttributePath string
	Action        dirty.Action
	Prior         any
	Next          any
}

// OnFieldChange reports every completed modification below the loan. Close
// the subscription to stop listening; the loan stays wired while any
// subscription is open.
func (l *Loan) OnFieldChange(fn func(FieldChange)) (*graph.Subscription, error) {
	if !l.bound {
		return nil, ErrNotInitialized
	}
	return graph.Subscribe(l, func(ev graph.Event) {
		if ev.Phase != graph.Changed {
			return
		}
		fn(FieldChange{
			ModelPath:     RootName + "." + ev.PathString(),
			AttributePath: ev.AttributePath(),
			Action:        ev.Action,
			Prior:         ev.Prior,
			Next:          ev.Next,
		})
	})
}
