package domain

import (
	"testing"
	"time"
)

func pendingJob(total int) ScrapeJob {
	return ScrapeJob{ID: "job-1", Status: JobPending, TotalProducts: total}
}

func runningJob(t *testing.T, total int) ScrapeJob {
	t.Helper()
	j, err := Apply(pendingJob(total), Started{At: time.Now().UTC()})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return j
}

func TestApplyStarted(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	j, err := Apply(pendingJob(4), Started{At: at})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.Status != JobRunning {
		t.Errorf("status = %s, want %s", j.Status, JobRunning)
	}
	if j.StartedAt == nil || !j.StartedAt.Equal(at) {
		t.Errorf("StartedAt = %v, want %v", j.StartedAt, at)
	}
}

func TestApplyBatchCountersAccumulate(t *testing.T) {
	j := runningJob(t, 5)

	j, err := Apply(j, BatchCompleted{Processed: 2, Successful: 1, Failed: 1})
	if err != nil {
		t.Fatalf("first batch: %v", err)
	}
	j, err = Apply(j, BatchCompleted{Processed: 3, Successful: 3, Failed: 0})
	if err != nil {
		t.Fatalf("second batch: %v", err)
	}

	if j.ProcessedProducts != 5 || j.SuccessfulProducts != 4 || j.FailedProducts != 1 {
		t.Errorf("counters = %d/%d/%d, want 5/4/1",
			j.ProcessedProducts, j.SuccessfulProducts, j.FailedProducts)
	}
	if j.SuccessfulProducts+j.FailedProducts != j.ProcessedProducts {
		t.Errorf("successful+failed != processed")
	}
}

func TestApplyBatchRejectsBadCounters(t *testing.T) {
	j := runningJob(t, 5)

	if _, err := Apply(j, BatchCompleted{Processed: 2, Successful: 2, Failed: 1}); err == nil {
		t.Error("mismatched counters accepted")
	}
	if _, err := Apply(j, BatchCompleted{Processed: 6, Successful: 6, Failed: 0}); err == nil {
		t.Error("processed beyond total accepted")
	}
}

func TestApplyTerminalStatesAreFinal(t *testing.T) {
	at := time.Now().UTC()
	terminal := []Event{
		Finished{At: at},
		Failed{At: at, Message: "boom"},
		Stopped{At: at},
	}
	for _, end := range terminal {
		j, err := Apply(runningJob(t, 2), end)
		if err != nil {
			t.Fatalf("%T: %v", end, err)
		}
		if !j.Status.Terminal() {
			t.Fatalf("%T: status %s not terminal", end, j.Status)
		}
		if j.CompletedAt == nil {
			t.Errorf("%T: CompletedAt not set", end)
		}
		for _, ev := range []Event{
			Started{At: at},
			BatchCompleted{Processed: 1, Successful: 1},
			Finished{At: at},
			Stopped{At: at},
		} {
			if _, err := Apply(j, ev); err == nil {
				t.Errorf("transition %T accepted out of terminal state %s", ev, j.Status)
			}
		}
	}
}

func TestApplyFailedRecordsMessage(t *testing.T) {
	j, err := Apply(runningJob(t, 1), Failed{At: time.Now().UTC(), Message: "source registry empty"})
	if err != nil {
		t.Fatalf("fail: %v", err)
	}
	if j.Status != JobFailed || j.ErrorMessage != "source registry empty" {
		t.Errorf("got %s %q", j.Status, j.ErrorMessage)
	}
}

func TestApplyRejectsStartFromRunning(t *testing.T) {
	j := runningJob(t, 1)
	if _, err := Apply(j, Started{At: time.Now().UTC()}); err == nil {
		t.Error("double start accepted")
	}
}

func TestApplySnapshotsAreValueSemantics(t *testing.T) {
	before := runningJob(t, 3)
	after, err := Apply(before, BatchCompleted{Processed: 1, Successful: 1})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if before.ProcessedProducts != 0 {
		t.Errorf("input snapshot mutated: processed = %d", before.ProcessedProducts)
	}
	if after.ProcessedProducts != 1 {
		t.Errorf("output snapshot processed = %d, want 1", after.ProcessedProducts)
	}
}
