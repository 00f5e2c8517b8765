package domain

import (
	"fmt"
	"time"
)

// Job state is advanced by applying events to immutable snapshots. Apply is
// the only place transitions happen, which pins down exactly when partial
// updates become visible to the progress boundary.

// Event advances a job snapshot.
type Event interface {
	isEvent()
}

// Started transitions a pending job to running.
type Started struct {
	At time.Time
}

// BatchCompleted adds the per-batch counter deltas to a running job.
type BatchCompleted struct {
	Processed  int
	Successful int
	Failed     int
}

// Finished completes a running job.
type Finished struct {
	At time.Time
}

// Failed fails a running job with an orchestration-level error message.
type Failed struct {
	At      time.Time
	Message string
}

// Stopped stops a running job on operator request.
type Stopped struct {
	At time.Time
}

func (Started) isEvent()        {}
func (BatchCompleted) isEvent() {}
func (Finished) isEvent()       {}
func (Failed) isEvent()         {}
func (Stopped) isEvent()        {}

// Apply returns the next job snapshot for the event. Transitions out of a
// terminal state and counter updates that would break processed <= total are
// rejected.
func Apply(j ScrapeJob, ev Event) (ScrapeJob, error) {
	if j.Status.Terminal() {
		return j, fmt.Errorf("job %s is %s: no transition leaves a terminal state", j.ID, j.Status)
	}
	switch e := ev.(type) {
	case Started:
		if j.Status != JobPending {
			return j, fmt.Errorf("job %s: cannot start from %s", j.ID, j.Status)
		}
		t := e.At
		j.Status = JobRunning
		j.StartedAt = &t
	case BatchCompleted:
		if j.Status != JobRunning {
			return j, fmt.Errorf("job %s: batch completed while %s", j.ID, j.Status)
		}
		if e.Successful+e.Failed != e.Processed {
			return j, fmt.Errorf("job %s: batch counters do not add up (%d+%d != %d)",
				j.ID, e.Successful, e.Failed, e.Processed)
		}
		if j.ProcessedProducts+e.Processed > j.TotalProducts {
			return j, fmt.Errorf("job %s: processed %d would exceed total %d",
				j.ID, j.ProcessedProducts+e.Processed, j.TotalProducts)
		}
		j.ProcessedProducts += e.Processed
		j.SuccessfulProducts += e.Successful
		j.FailedProducts += e.Failed
	case Finished:
		if j.Status != JobRunning {
			return j, fmt.Errorf("job %s: cannot finish from %s", j.ID, j.Status)
		}
		t := e.At
		j.Status = JobCompleted
		j.CompletedAt = &t
	case Failed:
		if j.Status != JobRunning {
			return j, fmt.Errorf("job %s: cannot fail from %s", j.ID, j.Status)
		}
		t := e.At
		j.Status = JobFailed
		j.CompletedAt = &t
		j.ErrorMessage = e.Message
	case Stopped:
		if j.Status != JobRunning {
			return j, fmt.Errorf("job %s: cannot stop from %s", j.ID, j.Status)
		}
		t := e.At
		j.Status = JobStopped
		j.CompletedAt = &t
	default:
		return j, fmt.Errorf("job %s: unknown event %T", j.ID, ev)
	}
	return j, nil
}
