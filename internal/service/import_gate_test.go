package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportGateSerializesSameKind(t *testing.T) {
	gate := NewImportGate()

	release, err := gate.Acquire(context.Background(), ImportKindCourses)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = gate.Acquire(ctx, ImportKindCourses)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release2, err := gate.Acquire(context.Background(), ImportKindCourses)
	require.NoError(t, err)
	release2()
}

func TestImportGateKindsAreIndependent(t *testing.T) {
	gate := NewImportGate()

	releaseCourses, err := gate.Acquire(context.Background(), ImportKindCourses)
	require.NoError(t, err)
	defer releaseCourses()

	releaseStudents, err := gate.Acquire(context.Background(), ImportKindStudents)
	require.NoError(t, err)
	releaseStudents()
}

func TestImportGateHonoursCancelledContext(t *testing.T) {
	gate := NewImportGate()
	release, err := gate.Acquire(context.Background(), ImportKindStudents)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gate.Acquire(ctx, ImportKindStudents)
	assert.ErrorIs(t, err, context.Canceled)
}
