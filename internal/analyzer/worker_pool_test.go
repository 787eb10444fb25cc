package analyzer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_BoundsConcurrency(t *testing.T) {
	const workers = 2
	pool := NewWorkerPool(workers)
	pool.Start()
	defer pool.Close()

	var running, peak atomic.Int64
	for i := 0; i < 8; i++ {
		pool.Submit(func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		})
	}
	pool.Wait()

	if got := peak.Load(); got > workers {
		t.Errorf("Expected at most %d jobs at once, saw %d", workers, got)
	}
	if stats := pool.GetStats(); stats.CompletedJobs != 8 || stats.ActiveWorkers != 0 {
		t.Errorf("Expected 8 completed jobs and no active workers, got %+v", stats)
	}
}

func TestWorkerPool_FanOutOnSingleWorker(t *testing.T) {
	// The four analyzers of one buffer must complete even when the pool
	// has fewer workers than analyzers
	pool := NewWorkerPool(1)
	pool.Start()
	defer pool.Close()

	buf := NewPixelBuffer(createCheckerboard(64, 4, 90, 200))
	var got AnalysisResult
	var wg sync.WaitGroup
	wg.Add(analyzerCount)
	pool.Submit(func() { defer wg.Done(); got.DepthVariance = DepthVariance(buf) })
	pool.Submit(func() { defer wg.Done(); got.PixelUniformity = PixelUniformity(buf) })
	pool.Submit(func() { defer wg.Done(); got.ScreenReflectionDetected = DetectScreenReflection(buf) })
	pool.Submit(func() { defer wg.Done(); got.EdgeSharpness = EdgeSharpness(buf) })
	wg.Wait()

	if expected := analyzeAll(buf); got != expected {
		t.Errorf("Expected %+v, got %+v", expected, got)
	}
}

func TestWorkerPool_PreservesResultSlots(t *testing.T) {
	// Batch callers write into per-file slots and read them back in order
	pool := NewWorkerPool(3)
	pool.Start()
	defer pool.Close()

	paths := []string{"a.jpg", "b.png", "c.webp", "d.gif", "e.bmp"}
	results := make([]string, len(paths))
	for i, path := range paths {
		pool.Submit(func() { results[i] = "done:" + path })
	}
	pool.Wait()

	for i, path := range paths {
		if results[i] != "done:"+path {
			t.Errorf("Slot %d: expected done:%s, got %q", i, path, results[i])
		}
	}
}

func TestWorkerPool_CloseDrainsQueuedJobs(t *testing.T) {
	pool := NewWorkerPool(1)

	var executed atomic.Int64
	// Queue capacity is twice the worker count; fill it before starting
	for i := 0; i < 2; i++ {
		if !pool.Submit(func() { executed.Add(1) }) {
			t.Fatal("Expected Submit to accept jobs before Close")
		}
	}
	pool.Close()
	pool.Start()
	pool.Wait()

	if got := executed.Load(); got != 2 {
		t.Errorf("Expected queued jobs to run after Close, got %d", got)
	}
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Close()
	pool.Close()

	ran := false
	job := func() { ran = true }
	if pool.Submit(job) {
		t.Fatal("Expected Submit to report false on a closed pool")
	}
	// Callers fall back to running the job themselves
	job()

	if !ran {
		t.Error("Expected the inline fallback to run the job")
	}
	if stats := pool.GetStats(); stats.TotalJobs != 0 {
		t.Errorf("Expected rejected job not to be counted, got %d", stats.TotalJobs)
	}
}

func TestWorkerPool_StartIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()
	pool.Start()
	defer pool.Close()

	var running, peak atomic.Int64
	for i := 0; i < 4; i++ {
		pool.Submit(func() {
			if n := running.Add(1); n > peak.Load() {
				peak.Store(n)
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
		})
	}
	pool.Wait()

	if peak.Load() != 1 {
		t.Errorf("Expected a second Start not to add workers, saw %d concurrent jobs", peak.Load())
	}
}

func TestWorkerPool_ConcurrentStatsAccess(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Close()

	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for j := 0; j < 50; j++ {
				if stats := pool.GetStats(); stats.ActiveWorkers > int64(stats.Workers) {
					t.Errorf("Active workers %d exceed pool size %d", stats.ActiveWorkers, stats.Workers)
					return
				}
			}
		}()
	}
	for i := 0; i < 20; i++ {
		pool.Submit(func() { time.Sleep(100 * time.Microsecond) })
	}
	readers.Wait()
	pool.Wait()

	if stats := pool.GetStats(); stats.TotalJobs != 20 || stats.CompletedJobs != 20 {
		t.Errorf("Expected 20 total and completed jobs, got %+v", stats)
	}
}
