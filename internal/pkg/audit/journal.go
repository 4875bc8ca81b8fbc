// Package audit records the changed events of an entity graph as a journal
// of timestamped entries, ready to be persisted by a consumer.
package audit

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/light-bringer/changegraph/internal/pkg/changepath"
	"github.com/light-bringer/changegraph/internal/pkg/clock"
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
	"github.com/light-bringer/changegraph/internal/pkg/graph"
)

// Entry is one recorded leaf change.
type Entry struct {
	ID            uuid.UUID
	EntityID      string
	Path          string
	AttributePath string
	Action        dirty.Action
	Prior         any
	Next          any
	RecordedAt    time.Time
}

type Option func(*Journal)

// WithFilter keeps only changes whose attribute path matches one of the
// patterns, e.g. "applications[*].borrower.*".
func WithFilter(patterns ...string) Option {
	return func(j *Journal) {
		j.filters = append(j.filters, patterns...)
	}
}

// WithPathPrefix prepends prefix to every recorded model path.
func WithPathPrefix(prefix string) Option {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// Journal is a root listener. It holds one listener on the root until
// Close.
type Journal struct {
	root    graph.Entity
	clk     clock.Clock
	filters []string
	prefix  string

	sub *graph.Subscription

	mu      sync.Mutex
	entries []Entry
}

func NewJournal(root graph.Entity, clk clock.Clock, opts ...Option) (*Journal, error) {
	j := &Journal{root: root, clk: clk}
	for _, opt := range opts {
		opt(j)
	}
	sub, err := graph.Subscribe(root, j.record)
	if err != nil {
		return nil, fmt.Errorf("subscribe journal: %w", err)
	}
	j.sub = sub
	return j, nil
}

func (j *Journal) record(ev graph.Event) {
	if ev.Phase != graph.Changed {
		return
	}
	attr := ev.AttributePath()
	if !j.accepts(attr) {
		if glog.V(2) {
			glog.Infof("audit: filtered %s", attr)
		}
		return
	}
	e := Entry{
		ID:            uuid.New(),
		EntityID:      j.root.Base().Identity(),
		Path:          j.prefix + ev.PathString(),
		AttributePath: attr,
		Action:        ev.Action,
		Prior:         ev.Prior,
		Next:          ev.Next,
		RecordedAt:    j.clk.Now(),
	}
	j.mu.Lock()
	j.entries = append(j.entries, e)
	j.mu.Unlock()
}

func (j *Journal) accepts(attr string) bool {
	if len(j.filters) == 0 {
		return true
	}
	for _, p := range j.filters {
		if changepath.Match(p, attr) {
			return true
		}
	}
	return false
}

// Entries returns a copy of the pending entries in record order.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.entries)
}

func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Drain returns the pending entries and empties the journal.
func (j *Journal) Drain() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := j.entries
	j.entries = nil
	return out
}

// Truncate drops the first n entries, typically after they were persisted.
func (j *Journal) Truncate(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if n <= 0 {
		return
	}
	n = min(n, len(j.entries))
	j.entries = slices.Delete(j.entries, 0, n)
}

// Close releases the root listener. Pending entries stay readable.
func (j *Journal) Close() error {
	return j.sub.Close()
}
