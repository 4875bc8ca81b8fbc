package domain

import (
	"github.com/light-bringer/changegraph/internal/pkg/dirty"
	"github.com/light-bringer/changegraph/internal/pkg/graph"
)

// FieldLock pins the value of the field at ModelPath against calculated
// updates. Unlocking keeps the entry with LockRemoved set so the removal is
// synchronized too.
type FieldLock struct {
	graph.Node
	modelPath   dirty.Value[string]
	lockRemoved dirty.Value[bool]
}

var fieldLockSchema = graph.MustSchema("FieldLock", []graph.Field{
	graph.Scalar("ModelPath", func(f *FieldLock) *dirty.Value[string] { return &f.modelPath }),
	graph.Scalar("LockRemoved", func(f *FieldLock) *dirty.Value[bool] { return &f.lockRemoved }),
}, graph.WithIDField("ModelPath"))

func NewFieldLock(modelPath string) *FieldLock {
	f := &FieldLock{modelPath: dirty.NewDirtyValue(modelPath)}
	graph.Init(f, fieldLockSchema)
	return f
}

func ReconstructFieldLock(modelPath string, lockRemoved bool) *FieldLock {
	f := &FieldLock{modelPath: dirty.NewValue(modelPath), lockRemoved: dirty.NewValue(lockRemoved)}
	graph.Init(f, fieldLockSchema)
	return f
}

func (f *FieldLock) ModelPath() string { return f.modelPath.Get() }
func (f *FieldLock) LockRemoved() bool { return f.lockRemoved.Get() }

func (f *FieldLock) SetLockRemoved(removed bool) error {
	return graph.Set(&f.Node, &f.lockRemoved, "LockRemoved", removed)
}
