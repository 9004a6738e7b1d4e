package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/rainier/internal/model"
)

// countingAnalyzer records how many analyses run at once
type countingAnalyzer struct {
	delay   time.Duration
	failOn  string
	calls   atomic.Int32
	active  atomic.Int32
	maxSeen atomic.Int32
}

func (a *countingAnalyzer) AnalyzeFile(ctx context.Context, path string) (*model.Report, error) {
	a.calls.Add(1)
	n := a.active.Add(1)
	defer a.active.Add(-1)
	for {
		seen := a.maxSeen.Load()
		if n <= seen || a.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if path == a.failOn {
		return nil, errors.New("extract: broken pdf")
	}
	return &model.Report{Filename: path}, nil
}

func submitAll(pool *Pool, analyzer Analyzer, paths []string) {
	for i, path := range paths {
		pool.Submit(&AnalyzeJob{Index: i, Path: path, Analyzer: analyzer})
	}
}

func TestNewPool_ClampsWorkers(t *testing.T) {
	for _, n := range []int{0, -3} {
		if p := NewPool(n); p.workers != 1 {
			t.Errorf("NewPool(%d) workers = %d, want 1", n, p.workers)
		}
	}
	if p := NewPool(4); p.workers != 4 {
		t.Errorf("NewPool(4) workers = %d", p.workers)
	}
}

func TestPool_AnalyzesEveryContract(t *testing.T) {
	analyzer := &countingAnalyzer{delay: time.Millisecond, failOn: "c.pdf"}
	paths := []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf", "f.pdf"}

	pool := NewPool(3)
	pool.Start()
	submitAll(pool, analyzer, paths)
	results := pool.Wait()

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	if got := analyzer.calls.Load(); got != int32(len(paths)) {
		t.Errorf("expected %d analyses, got %d", len(paths), got)
	}

	failures := 0
	for _, r := range results {
		fr := r.(*FileResult)
		if r.GetError() != nil {
			failures++
			if fr.Path != "c.pdf" {
				t.Errorf("unexpected failure for %s: %v", fr.Path, fr.Error)
			}
			continue
		}
		if fr.Report == nil || fr.Report.Filename != fr.Path {
			t.Errorf("missing report for %s", fr.Path)
		}
	}
	if failures != 1 {
		t.Errorf("expected 1 failure, got %d", failures)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	analyzer := &countingAnalyzer{delay: 20 * time.Millisecond}
	paths := make([]string, 12)
	for i := range paths {
		paths[i] = "contract.pdf"
	}

	pool := NewPool(3)
	pool.Start()
	submitAll(pool, analyzer, paths)
	pool.Wait()

	if got := analyzer.maxSeen.Load(); got > 3 {
		t.Errorf("expected at most 3 concurrent analyses, saw %d", got)
	}
	if got := analyzer.maxSeen.Load(); got < 2 {
		t.Errorf("expected analyses to overlap, saw %d", got)
	}
}

func TestPool_SubmitDoesNotBlockOnResults(t *testing.T) {
	analyzer := &countingAnalyzer{}
	paths := make([]string, 100)
	for i := range paths {
		paths[i] = "contract.pdf"
	}

	pool := NewPool(1)
	pool.Start()

	done := make(chan struct{})
	go func() {
		submitAll(pool, analyzer, paths)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Submit blocked with results pending")
	}

	if got := len(pool.Wait()); got != len(paths) {
		t.Errorf("expected %d results, got %d", len(paths), got)
	}
}

func TestPool_ContextCancelStopsAnalyses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	analyzer := &countingAnalyzer{delay: time.Minute}

	pool := NewPoolWithContext(ctx, 2)
	pool.Start()
	submitAll(pool, analyzer, []string{"a.pdf", "b.pdf"})

	time.AfterFunc(20*time.Millisecond, cancel)

	done := make(chan []Result)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		for _, r := range results {
			if !errors.Is(r.GetError(), context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", r.GetError())
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop after cancellation")
	}
}

func TestResultCollector(t *testing.T) {
	c := NewResultCollector()
	c.Add(&FileResult{Path: "a.pdf"})
	c.Add(&FileResult{Path: "b.pdf", Error: errors.New("boom")})

	results := c.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	// Results returns a copy
	results[0] = nil
	if c.Results()[0] == nil {
		t.Error("collector should not share its backing slice")
	}
}
