// Package committer collects Spanner mutations produced by repositories and
// applies them in one transaction.
//
// Repositories never write. They return mutations, the use case gathers
// them into a CommitPlan and an Applier commits the plan atomically:
//
//	plan := committer.NewPlan()
//	plan.Add(loanRepo.UpdateMut(loan))
//	for _, e := range journal.Drain() {
//	    plan.Add(changeRepo.InsertMut(e))
//	}
//	return applier.Apply(ctx, plan)
package committer

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
)

// ErrVersionConflict is returned when the stored version moved since the
// aggregate was loaded.
var ErrVersionConflict = errors.New("committer: version conflict")

// CommitPlan is an ordered set of mutations.
type CommitPlan struct {
	mutations []*spanner.Mutation
}

func NewPlan() *CommitPlan {
	return &CommitPlan{}
}

// Add appends mut. Nil mutations, returned by repositories for clean
// aggregates, are skipped.
func (p *CommitPlan) Add(mut *spanner.Mutation) {
	if mut != nil {
		p.mutations = append(p.mutations, mut)
	}
}

func (p *CommitPlan) AddMultiple(muts []*spanner.Mutation) {
	for _, m := range muts {
		p.Add(m)
	}
}

func (p *CommitPlan) Mutations() []*spanner.Mutation {
	return p.mutations
}

func (p *CommitPlan) IsEmpty() bool {
	return len(p.mutations) == 0
}

func (p *CommitPlan) Count() int {
	return len(p.mutations)
}

// Applier commits a plan. Committer is the Spanner implementation.
type Applier interface {
	Apply(ctx context.Context, plan *CommitPlan) error
}

// VersionedApplier also commits plans guarded by optimistic locking.
type VersionedApplier interface {
	Applier
	ApplyWithVersionCheck(ctx context.Context, check VersionCheck, plan *CommitPlan) error
}

// VersionCheck names the row and column guarding a plan with optimistic
// locking.
type VersionCheck struct {
	Table    string
	Key      spanner.Key
	Column   string
	Expected int64
}

type Committer struct {
	client *spanner.Client
}

func NewCommitter(client *spanner.Client) *Committer {
	return &Committer{client: client}
}

// Apply writes the plan with a single blind-write commit. Empty plans do not
// reach Spanner.
func (c *Committer) Apply(ctx context.Context, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}
	if _, err := c.client.Apply(ctx, plan.Mutations()); err != nil {
		return fmt.Errorf("apply commit plan: %w", err)
	}
	return nil
}

// ApplyWithVersionCheck buffers the plan inside a read-write transaction
// after verifying check. A mismatch yields ErrVersionConflict.
func (c *Committer) ApplyWithVersionCheck(ctx context.Context, check VersionCheck, plan *CommitPlan) error {
	if plan.IsEmpty() {
		return nil
	}
	_, err := c.client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		row, err := txn.ReadRow(ctx, check.Table, check.Key, []string{check.Column})
		if err != nil {
			return fmt.Errorf("read %s.%s: %w", check.Table, check.Column, err)
		}
		var current int64
		if err := row.Column(0, &current); err != nil {
			return fmt.Errorf("decode %s.%s: %w", check.Table, check.Column, err)
		}
		if current != check.Expected {
			return fmt.Errorf("%s %v: expected version %d, found %d: %w",
				check.Table, check.Key, check.Expected, current, ErrVersionConflict)
		}
		return txn.BufferWrite(plan.Mutations())
	})
	if err != nil {
		return fmt.Errorf("apply commit plan with version check: %w", err)
	}
	return nil
}
