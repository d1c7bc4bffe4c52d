package batch

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"carrierscope/internal/carrier"
)

// fakeRunner returns canned verdicts and tracks peak parallelism.
type fakeRunner struct {
	verdicts map[string]carrier.Verdict
	delay    time.Duration

	active int64
	peak   int64

	mu    sync.Mutex
	order []string
}

func (r *fakeRunner) Run(_ context.Context, id string) carrier.Verdict {
	n := atomic.AddInt64(&r.active, 1)
	for {
		p := atomic.LoadInt64(&r.peak)
		if n <= p || atomic.CompareAndSwapInt64(&r.peak, p, n) {
			break
		}
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	atomic.AddInt64(&r.active, -1)

	r.mu.Lock()
	r.order = append(r.order, id)
	r.mu.Unlock()

	if v, ok := r.verdicts[id]; ok {
		return v
	}
	return carrier.Verdict{ID: id, Accepted: false, Reason: carrier.ReasonNotFound}
}

func (r *fakeRunner) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

type tickingPauser struct {
	lock  sync.Mutex
	pause []time.Duration
}

func (p *tickingPauser) Pause(_ context.Context, delay time.Duration) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.pause = append(p.pause, delay)
}

func (p *tickingPauser) pauses() []time.Duration {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]time.Duration(nil), p.pause...)
}

func acceptedVerdict(id string) carrier.Verdict {
	return carrier.Verdict{
		ID:       id,
		Accepted: true,
		Record:   &carrier.Record{ID: id, LegalName: "CARRIER " + id},
		URL:      "https://safer.example.test/query.asp?query_string=" + id,
	}
}

func TestOrchestratorAggregatesAcceptedRecords(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{verdicts: map[string]carrier.Verdict{
		"1": acceptedVerdict("1"),
		"2": {ID: "2", Accepted: false, Reason: carrier.ReasonTooNew},
		"3": acceptedVerdict("3"),
	}}
	o := New(runner, Config{Concurrency: 2, Mode: carrier.ModeFull}, nil).
		WithPauser(&tickingPauser{})

	result := o.Run(context.Background(), []string{"1", "2", "3"})

	require.Len(t, result.Records, 2)
	ids := []string{result.Records[0].ID, result.Records[1].ID}
	require.ElementsMatch(t, []string{"1", "3"}, ids)
	require.Empty(t, result.URLs)
}

func TestOrchestratorConcurrencyBound(t *testing.T) {
	t.Parallel()

	ids := make([]string, 12)
	for i := range ids {
		ids[i] = strconv.Itoa(i)
	}
	runner := &fakeRunner{delay: 20 * time.Millisecond}
	o := New(runner, Config{Concurrency: 3, Mode: carrier.ModeFull}, nil).
		WithPauser(&tickingPauser{})

	o.Run(context.Background(), ids)

	require.LessOrEqual(t, atomic.LoadInt64(&runner.peak), int64(3))
	require.Len(t, runner.seen(), 12)
}

func TestOrchestratorPausesBetweenSlices(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	pauser := &tickingPauser{}
	delay := 750 * time.Millisecond
	o := New(runner, Config{Concurrency: 2, SliceDelay: delay, Mode: carrier.ModeFull}, nil).
		WithPauser(pauser)

	// Five identifiers at concurrency two is three slices, so two pauses.
	o.Run(context.Background(), []string{"1", "2", "3", "4", "5"})

	require.Equal(t, []time.Duration{delay, delay}, pauser.pauses())
}

func TestOrchestratorSlicesRunInInputOrder(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	o := New(runner, Config{Concurrency: 2, Mode: carrier.ModeFull}, nil).
		WithPauser(&tickingPauser{})

	o.Run(context.Background(), []string{"a", "b", "c", "d", "e"})

	seen := runner.seen()
	require.Len(t, seen, 5)
	// Members of a slice may interleave, but a later slice never starts
	// before an earlier one drains.
	sliceOf := map[string]int{"a": 0, "b": 0, "c": 1, "d": 1, "e": 2}
	last := 0
	for _, id := range seen {
		require.GreaterOrEqual(t, sliceOf[id], last, "id %s ran after slice %d drained", id, last)
		last = sliceOf[id]
	}
}

func TestOrchestratorURLModes(t *testing.T) {
	t.Parallel()

	urlsOnly := map[string]carrier.Verdict{
		"1": {ID: "1", Accepted: true, URL: "https://safer.example.test/1"},
		"2": {ID: "2", Accepted: true, URL: "https://safer.example.test/2"},
	}

	t.Run("urls mode collects urls without records", func(t *testing.T) {
		t.Parallel()
		o := New(&fakeRunner{verdicts: urlsOnly}, Config{Concurrency: 2, Mode: carrier.ModeURLs}, nil).
			WithPauser(&tickingPauser{})
		result := o.Run(context.Background(), []string{"1", "2"})
		require.Empty(t, result.Records)
		require.ElementsMatch(t,
			[]string{"https://safer.example.test/1", "https://safer.example.test/2"},
			result.URLs,
		)
	})

	t.Run("both mode collects records and urls", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{verdicts: map[string]carrier.Verdict{
			"1": acceptedVerdict("1"),
		}}
		o := New(runner, Config{Concurrency: 1, Mode: carrier.ModeBoth}, nil).
			WithPauser(&tickingPauser{})
		result := o.Run(context.Background(), []string{"1"})
		require.Len(t, result.Records, 1)
		require.Len(t, result.URLs, 1)
	})

	t.Run("full mode collects only records", func(t *testing.T) {
		t.Parallel()
		runner := &fakeRunner{verdicts: map[string]carrier.Verdict{
			"1": acceptedVerdict("1"),
		}}
		o := New(runner, Config{Concurrency: 1, Mode: carrier.ModeFull}, nil).
			WithPauser(&tickingPauser{})
		result := o.Run(context.Background(), []string{"1"})
		require.Len(t, result.Records, 1)
		require.Empty(t, result.URLs)
	})
}

func TestOrchestratorRejectionsDoNotAbortBatch(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{verdicts: map[string]carrier.Verdict{
		"1": {ID: "1", Accepted: false, Reason: carrier.ReasonFetchFailure},
		"2": {ID: "2", Accepted: false, Reason: carrier.ReasonNotAuthorized},
		"3": acceptedVerdict("3"),
	}}
	o := New(runner, Config{Concurrency: 1, Mode: carrier.ModeFull}, nil).
		WithPauser(&tickingPauser{})

	result := o.Run(context.Background(), []string{"1", "2", "3"})

	require.Len(t, runner.seen(), 3)
	require.Len(t, result.Records, 1)
	require.Equal(t, "3", result.Records[0].ID)
}

func TestOrchestratorEmptyInput(t *testing.T) {
	t.Parallel()

	pauser := &tickingPauser{}
	o := New(&fakeRunner{}, Config{Concurrency: 4, Mode: carrier.ModeFull}, nil).
		WithPauser(pauser)

	result := o.Run(context.Background(), nil)

	require.Empty(t, result.Records)
	require.Empty(t, result.URLs)
	require.Empty(t, pauser.pauses())
}

func TestOrchestratorConcurrencyClampedToOne(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{verdicts: map[string]carrier.Verdict{"1": acceptedVerdict("1")}}
	o := New(runner, Config{Concurrency: 0, Mode: carrier.ModeFull}, nil).
		WithPauser(&tickingPauser{})

	result := o.Run(context.Background(), []string{"1"})
	require.Len(t, result.Records, 1)
}
