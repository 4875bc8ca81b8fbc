package committer

import (
	"context"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
)

func TestCommitPlan_SkipsNil(t *testing.T) {
	p := NewPlan()
	assert.True(t, p.IsEmpty())

	m := spanner.Insert("loan_changes", []string{"change_id"}, []any{"c-1"})
	p.Add(nil)
	p.Add(m)
	p.AddMultiple([]*spanner.Mutation{nil, m})

	assert.Equal(t, 2, p.Count())
	assert.False(t, p.IsEmpty())
	assert.Equal(t, []*spanner.Mutation{m, m}, p.Mutations())
}

func TestCommitter_EmptyPlanIsNoop(t *testing.T) {
	c := NewCommitter(nil)
	assert.NoError(t, c.Apply(context.Background(), NewPlan()))
	assert.NoError(t, c.ApplyWithVersionCheck(context.Background(), VersionCheck{Table: "loans"}, NewPlan()))
}

var _ VersionedApplier = (*Committer)(nil)
