package workflow

import (
	"sync"
	"testing"
	"time"
)

// NOTE: These tests are intentionally DB-free. They validate the intended
// outbox semantics:
// - retry backoff grows exponentially and caps at MaxBackoff
// - a row that keeps failing goes terminal (DEAD) after MaxAttempts
// - concurrent dispatchers never claim the same row twice
//
// Full DB+PubSub integration tests should be added in an environment that can
// run Postgres + the Pub/Sub emulator.

func TestBackoffSchedule(t *testing.T) {
	d := &OutboxDispatcher{
		InitialBackoff: 5 * time.Second,
		MaxBackoff:     10 * time.Minute,
	}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{3, 20 * time.Second},
		{4, 40 * time.Second},
		{8, 10 * time.Minute},
		{20, 10 * time.Minute},
	}
	for _, tc := range cases {
		if got := d.backoff(tc.attempt); got != tc.want {
			t.Errorf("backoff(%d) = %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

// fakeOutboxRow mirrors the publish lifecycle a PortalEventRecord goes
// through: PENDING -> PROCESSING -> PUBLISHED | FAILED(retry) | DEAD.
type fakeOutboxRow struct {
	status   string
	attempts int
	lockedBy string
}

type fakeOutbox struct {
	mu          sync.Mutex
	rows        map[string]*fakeOutboxRow
	maxAttempts int
}

func newFakeOutbox(maxAttempts int) *fakeOutbox {
	return &fakeOutbox{rows: map[string]*fakeOutboxRow{}, maxAttempts: maxAttempts}
}

// claim models the dispatcher's claim transaction: due rows move to
// PROCESSING under the claimant's id, rows past MaxAttempts go DEAD, and
// rows already PROCESSING are skipped (SKIP LOCKED equivalent).
func (o *fakeOutbox) claim(dispatcherId string) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	var claimed []string
	for id, row := range o.rows {
		switch row.status {
		case "PENDING", "FAILED":
			if row.attempts >= o.maxAttempts {
				row.status = "DEAD"
				continue
			}
			row.status = "PROCESSING"
			row.lockedBy = dispatcherId
			row.attempts++
			claimed = append(claimed, id)
		}
	}
	return claimed
}

func (o *fakeOutbox) finish(id string, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	row := o.rows[id]
	row.lockedBy = ""
	if ok {
		row.status = "PUBLISHED"
	} else {
		row.status = "FAILED"
	}
}

func TestOutboxPoisonRowGoesDead(t *testing.T) {
	o := newFakeOutbox(3)
	o.rows["ev-1"] = &fakeOutboxRow{status: "PENDING"}

	// Publishing always fails.
	for i := 0; i < 10; i++ {
		for _, id := range o.claim("d-1") {
			o.finish(id, false)
		}
	}

	row := o.rows["ev-1"]
	if row.status != "DEAD" {
		t.Fatalf("status = %s, want DEAD", row.status)
	}
	if row.attempts != 3 {
		t.Fatalf("attempts = %d, want exactly MaxAttempts", row.attempts)
	}
}

func TestOutboxConcurrentDispatchersClaimDisjointRows(t *testing.T) {
	o := newFakeOutbox(20)
	for _, id := range []string{"ev-1", "ev-2", "ev-3", "ev-4", "ev-5"} {
		o.rows[id] = &fakeOutboxRow{status: "PENDING"}
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed = map[string]int{}
	)
	for _, dispatcher := range []string{"d-1", "d-2", "d-3"} {
		dispatcher := dispatcher
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, id := range o.claim(dispatcher) {
				mu.Lock()
				claimed[id]++
				mu.Unlock()
				o.finish(id, true)
			}
		}()
	}
	wg.Wait()

	for id, n := range claimed {
		if n != 1 {
			t.Errorf("row %s claimed %d times, want 1", id, n)
		}
	}
	for id, row := range o.rows {
		if row.status != "PUBLISHED" {
			t.Errorf("row %s status = %s, want PUBLISHED", id, row.status)
		}
	}
}

func TestOutboxRetryAfterTransientFailure(t *testing.T) {
	o := newFakeOutbox(20)
	o.rows["ev-1"] = &fakeOutboxRow{status: "PENDING"}

	// First delivery attempt fails, second succeeds: at-least-once.
	ids := o.claim("d-1")
	if len(ids) != 1 {
		t.Fatalf("claimed %d rows, want 1", len(ids))
	}
	o.finish("ev-1", false)
	if o.rows["ev-1"].status != "FAILED" {
		t.Fatalf("status after failure = %s, want FAILED", o.rows["ev-1"].status)
	}

	ids = o.claim("d-1")
	if len(ids) != 1 {
		t.Fatalf("reclaimed %d rows, want 1", len(ids))
	}
	o.finish("ev-1", true)
	if o.rows["ev-1"].status != "PUBLISHED" {
		t.Fatalf("final status = %s, want PUBLISHED", o.rows["ev-1"].status)
	}
	if o.rows["ev-1"].attempts != 2 {
		t.Fatalf("attempts = %d, want 2", o.rows["ev-1"].attempts)
	}
}
