package batch

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Tally aggregates outcomes across concurrent conversions. It is owned by
// one batch run and read once, after all tasks finish.
type Tally struct {
	success atomic.Int64
	failed  atomic.Int64

	mu       sync.Mutex
	failures []Failure
}

// Failure records why one component failed.
type Failure struct {
	ID  string `json:"id"`
	Err string `json:"error"`
}

// Succeed counts one successful conversion.
func (t *Tally) Succeed() { t.success.Add(1) }

// Fail counts one failed conversion.
func (t *Tally) Fail(id string, err error) {
	t.failed.Add(1)
	t.mu.Lock()
	t.failures = append(t.failures, Failure{ID: id, Err: err.Error()})
	t.mu.Unlock()
}

// Report is the final summary of a batch.
type Report struct {
	Total     int       `json:"total"`
	Success   int       `json:"success"`
	Failed    int       `json:"failed"`
	FailedIDs []string  `json:"failed_ids"`
	Failures  []Failure `json:"failures"`
}

// Report snapshots the tally. Failures are sorted by id because completion
// order is not deterministic in parallel mode.
func (t *Tally) Report(total int) Report {
	t.mu.Lock()
	failures := append([]Failure(nil), t.failures...)
	t.mu.Unlock()
	sort.Slice(failures, func(i, j int) bool { return failures[i].ID < failures[j].ID })

	ids := make([]string, len(failures))
	for i, f := range failures {
		ids[i] = f.ID
	}
	return Report{
		Total:     total,
		Success:   int(t.success.Load()),
		Failed:    int(t.failed.Load()),
		FailedIDs: ids,
		Failures:  failures,
	}
}
