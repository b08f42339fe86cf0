package provisioning

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder notes the order in which steps run.
type recorder struct {
	ran []string
}

func (r *recorder) step(name string, deps []string, err error) Step {
	return NewStep(name, deps, func(_ *Context) error {
		r.ran = append(r.ran, name)
		return err
	})
}

func newTestContext(t *testing.T) (*Context, *MockObserver) {
	t.Helper()
	observer := NewMockObserver()
	return &Context{
		Context:  context.Background(),
		State:    NewState(),
		Observer: observer,
		Metrics:  NewMetrics(),
		RunID:    "test-run",
	}, observer
}

func TestNewPipeline_Validation(t *testing.T) {
	t.Parallel()
	noop := func(*Context) error { return nil }

	tests := []struct {
		name  string
		steps []Step
		want  string
	}{
		{
			name:  "unnamed step",
			steps: []Step{NewStep("", nil, noop)},
			want:  "step 0 has no name",
		},
		{
			name:  "duplicate name",
			steps: []Step{NewStep("a", nil, noop), NewStep("a", nil, noop)},
			want:  `duplicate step "a"`,
		},
		{
			name:  "unknown dependency",
			steps: []Step{NewStep("a", []string{"missing"}, noop)},
			want:  `step "a" depends on unknown step "missing"`,
		},
		{
			name:  "self dependency",
			steps: []Step{NewStep("a", []string{"a"}, noop)},
			want:  "dependency cycle among a",
		},
		{
			name: "cycle",
			steps: []Step{
				NewStep("root", nil, noop),
				NewStep("a", []string{"root", "c"}, noop),
				NewStep("b", []string{"a"}, noop),
				NewStep("c", []string{"b"}, noop),
			},
			want: "dependency cycle among a, b, c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := NewPipeline(tt.steps...)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrInvalidGraph)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewPipeline_Empty(t *testing.T) {
	t.Parallel()
	p, err := NewPipeline()

	require.NoError(t, err)
	assert.Empty(t, p.Order())
}

func TestPipeline_OrderRespectsDependencies(t *testing.T) {
	t.Parallel()
	noop := func(*Context) error { return nil }

	// Declared out of dependency order on purpose.
	p, err := NewPipeline(
		NewStep("deploy", []string{"build", "test"}, noop),
		NewStep("test", []string{"build"}, noop),
		NewStep("build", []string{"fetch"}, noop),
		NewStep("fetch", nil, noop),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"fetch", "build", "test", "deploy"}, p.Order())
}

func TestPipeline_OrderBreaksTiesByDeclaration(t *testing.T) {
	t.Parallel()
	noop := func(*Context) error { return nil }
	steps := []Step{
		NewStep("root", nil, noop),
		NewStep("left", []string{"root"}, noop),
		NewStep("right", []string{"root"}, noop),
		NewStep("join", []string{"right", "left"}, noop),
	}

	for range 10 {
		p, err := NewPipeline(steps...)
		require.NoError(t, err)
		assert.Equal(t, []string{"root", "left", "right", "join"}, p.Order())
	}
}

func TestPipeline_DuplicateDependencyIsCountedOnce(t *testing.T) {
	t.Parallel()
	noop := func(*Context) error { return nil }

	p, err := NewPipeline(
		NewStep("a", nil, noop),
		NewStep("b", []string{"a", "a"}, noop),
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, p.Order())
}

func TestPipeline_Run_Success(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	p, err := NewPipeline(
		rec.step("second", []string{"first"}, nil),
		rec.step("first", nil, nil),
	)
	require.NoError(t, err)
	ctx, observer := newTestContext(t)

	require.NoError(t, p.Run(ctx))

	assert.Equal(t, []string{"first", "second"}, rec.ran)
	assert.Equal(t, []string{"first", "second"}, observer.stepsOf(EventStepStarted))
	assert.Equal(t, []string{"first", "second"}, observer.stepsOf(EventStepCompleted))
	assert.Empty(t, observer.eventsOf(EventStepFailed))
	assert.Len(t, observer.eventsOf(EventProgress), 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(ctx.Metrics.stepsTotal.WithLabelValues("second", ResultSucceeded)))
}

func TestPipeline_Run_FailFast(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	rec := &recorder{}
	p, err := NewPipeline(
		rec.step("a", nil, nil),
		rec.step("b", []string{"a"}, boom),
		rec.step("c", []string{"b"}, nil),
		rec.step("d", []string{"a"}, nil),
	)
	require.NoError(t, err)
	ctx, observer := newTestContext(t)

	err = p.Run(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "b step failed: boom")
	assert.Equal(t, []string{"a", "b"}, rec.ran, "nothing runs after a failure")

	failed := observer.eventsOf(EventStepFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].Step)
	assert.ErrorIs(t, failed[0].Err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(ctx.Metrics.stepsTotal.WithLabelValues("b", ResultFailed)))
}

func TestPipeline_Run_CancelledContext(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	p, err := NewPipeline(rec.step("a", nil, nil))
	require.NoError(t, err)
	ctx, _ := newTestContext(t)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	ctx.Context = cancelled

	err = p.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "a step failed")
	assert.Empty(t, rec.ran)
}

func TestPipeline_Steps(t *testing.T) {
	t.Parallel()
	noop := func(*Context) error { return nil }
	p, err := NewPipeline(NewStep("b", []string{"a"}, noop), NewStep("a", nil, noop))
	require.NoError(t, err)

	steps := p.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "a", steps[0].Name())
	assert.Equal(t, []string{"a"}, steps[1].DependsOn())
}
