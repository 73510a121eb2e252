package service

import "context"

// ImportKind identifies one of the bulk import pipelines.
type ImportKind string

const (
	ImportKindCourses  ImportKind = "courses"
	ImportKindStudents ImportKind = "students"
)

// ImportGate serializes imports per kind. The store delegates isolation
// to its transaction manager, but two same-kind imports interleaving
// their delete and insert phases would still corrupt the catalog, so
// each kind gets a single-writer slot.
type ImportGate struct {
	slots map[ImportKind]chan struct{}
}

// NewImportGate builds a gate with one slot per import kind.
func NewImportGate() *ImportGate {
	slots := make(map[ImportKind]chan struct{})
	for _, kind := range []ImportKind{ImportKindCourses, ImportKindStudents} {
		slot := make(chan struct{}, 1)
		slot <- struct{}{}
		slots[kind] = slot
	}
	return &ImportGate{slots: slots}
}

// Acquire blocks until the kind's slot is free or the context is done.
// The returned release function must be called exactly once.
func (g *ImportGate) Acquire(ctx context.Context, kind ImportKind) (func(), error) {
	slot := g.slots[kind]
	select {
	case <-slot:
		return func() { slot <- struct{}{} }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
