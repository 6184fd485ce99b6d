package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/plantaest/citronspam/internal/log"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *SyncJob) error
	callCount int
}

func (m *mockStep) Do(ctx context.Context, job *SyncJob) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

func (m *mockStep) Name() string {
	return m.name
}

func TestPipelineNew(t *testing.T) {
	t.Parallel()

	p := New()
	if len(p.steps) != 0 {
		t.Errorf("expected 0 steps, got %d", len(p.steps))
	}
	if p.logger == nil {
		t.Error("expected default logger")
	}
}

func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New(WithLogger(log.Discard()))
		for _, name := range []string{"a", "b", "c"} {
			p.AddSteps(&mockStep{name: name, doFunc: func(context.Context, *SyncJob) error {
				order = append(order, name)
				return nil
			}})
		}

		job := NewSyncJob("viwiki", "T", "2025-03-01")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, order); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"a", "b", "c"}, job.PerformedSteps); diff != "" {
			t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops on error", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		last := &mockStep{name: "last"}
		p := New(WithLogger(log.Discard()))
		p.AddSteps(
			&mockStep{name: "fail", doFunc: func(context.Context, *SyncJob) error { return boom }},
			last,
		)

		job := NewSyncJob("viwiki", "T", "2025-03-01")
		if err := p.Execute(context.Background(), job); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
		if last.callCount != 0 {
			t.Error("step after failure ran")
		}
		if !errors.Is(job.Error, boom) || job.ErrorMessage != "boom" {
			t.Errorf("error not recorded: %v %q", job.Error, job.ErrorMessage)
		}
	})

	t.Run("skip ends without error", func(t *testing.T) {
		t.Parallel()

		last := &mockStep{name: "last"}
		p := New(WithLogger(log.Discard()))
		p.AddSteps(
			&mockStep{name: "skip", doFunc: func(_ context.Context, job *SyncJob) error {
				job.Skip("nothing to do")
				return nil
			}},
			last,
		)

		job := NewSyncJob("viwiki", "T", "2025-03-01")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if last.callCount != 0 {
			t.Error("step after skip ran")
		}
		if !job.Skipped || job.SkipReason != "nothing to do" || job.Succeeded() {
			t.Errorf("unexpected job state: %+v", job)
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		step := &mockStep{name: "never"}
		p := New(WithLogger(log.Discard()))
		p.AddSteps(step)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := p.Execute(ctx, NewSyncJob("viwiki", "T", "2025-03-01")); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step ran after cancellation")
		}
	})
}
