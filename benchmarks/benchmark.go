package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"synckit/pkg/concurrency/channel"
	"synckit/pkg/concurrency/mutex"
	"synckit/pkg/concurrency/pool"
	"synckit/pkg/concurrency/semaphore"
	"synckit/pkg/primitives"
)

// BenchmarkResult captures detailed performance metrics for a single
// contention scenario. It includes timing statistics, throughput metrics,
// and success/error counts.
type BenchmarkResult struct {
	Scenario        string        `json:"scenario"`           // Descriptive name of the benchmark scenario
	Operations      int           `json:"operations"`         // Total number of operations executed
	ConcurrentUnits int           `json:"concurrent_units"`   // Number of concurrent goroutines driving the scenario
	TotalDuration   time.Duration `json:"total_duration_ns"`  // Total time taken for all operations
	AvgDuration     time.Duration `json:"avg_duration_ns"`    // Average time per operation
	MinDuration     time.Duration `json:"min_duration_ns"`    // Fastest operation
	MaxDuration     time.Duration `json:"max_duration_ns"`    // Slowest operation
	MedianDuration  time.Duration `json:"median_duration_ns"` // Median operation time
	P95Duration     time.Duration `json:"p95_duration_ns"`    // 95th percentile operation time
	P99Duration     time.Duration `json:"p99_duration_ns"`    // 99th percentile operation time
	OpsPerSecond    float64       `json:"ops_per_second"`     // Throughput metric
	ErrorCount      int           `json:"error_count"`        // Number of failed operations
	Timestamp       time.Time     `json:"timestamp"`          // When this scenario was executed
}

// BenchmarkReport aggregates results from all scenarios into a single report.
type BenchmarkReport struct {
	StartTime     time.Time         `json:"start_time"`     // When the benchmark suite started
	EndTime       time.Time         `json:"end_time"`       // When the benchmark suite completed
	TotalDuration time.Duration     `json:"total_duration"` // Total time for the entire suite
	Results       []BenchmarkResult `json:"results"`        // Individual scenario results
}

// main orchestrates the contention benchmark suite. It reads configuration
// from environment variables, runs every scenario, and writes a JSON report.
//
// Environment variables:
//   - BENCHMARK_OUTPUT: Directory for output reports (default: ./benchmark-results)
//   - BENCHMARK_OPERATIONS: Operations per scenario (default: 10000)
//   - BENCHMARK_CONCURRENT_UNITS: Concurrent goroutines per scenario (default: 8)
func main() {
	outputDir := os.Getenv("BENCHMARK_OUTPUT")
	if outputDir == "" {
		outputDir = "./benchmark-results"
	}
	outputDir = filepath.Clean(outputDir)

	operations := 10000
	if v := os.Getenv("BENCHMARK_OPERATIONS"); v != "" {
		_, _ = fmt.Sscanf(v, "%d", &operations)
	}

	units := 8
	if v := os.Getenv("BENCHMARK_CONCURRENT_UNITS"); v != "" {
		_, _ = fmt.Sscanf(v, "%d", &units)
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	log.Printf("Starting contention benchmark suite...")
	log.Printf("Operations: %d, Concurrent Units: %d", operations, units)

	report := BenchmarkReport{
		StartTime: time.Now(),
		Results:   []BenchmarkResult{},
	}

	scenarios := []struct {
		name string
		op   func() error
	}{
		{"ExclusiveLock acquire/release", lockScenario()},
		{"CountingSemaphore admission", semaphoreScenario(units / 2)},
		{"OrderedLockSet two-lock acquire", orderedScenario()},
		{"BoundedChannel send/receive", channelScenario()},
		{"WorkerPool task round-trip", poolScenario()},
	}

	for _, sc := range scenarios {
		log.Printf("SCENARIO: %s", sc.name)
		result := runScenario(sc.name, sc.op, operations, units)
		report.Results = append(report.Results, result)
		printResult(result)
	}

	report.EndTime = time.Now()
	report.TotalDuration = report.EndTime.Sub(report.StartTime)

	timestamp := time.Now().Format("20060102_150405")
	jsonFile := fmt.Sprintf("%s/benchmark_report_%s.json", outputDir, timestamp)
	saveJSONReport(report, jsonFile)

	log.Printf("BENCHMARK SUITE COMPLETE: %d scenarios in %s", len(report.Results), report.TotalDuration)
	log.Printf("Report saved to: %s", jsonFile)
}

// lockScenario returns an operation that bounces a shared ExclusiveLock.
func lockScenario() func() error {
	l := mutex.New("bench-lock")
	return func() error {
		l.Acquire()
		l.Release()
		return nil
	}
}

// semaphoreScenario returns an operation that takes and returns one permit.
// Sizing permits below the unit count keeps the waiter queue busy.
func semaphoreScenario(permits int) func() error {
	if permits < 1 {
		permits = 1
	}
	s := semaphore.New("bench-sem", permits)
	return func() error {
		s.Acquire()
		s.Release()
		return nil
	}
}

// orderedScenario returns an operation that takes a two-lock set, the shape
// the dining-philosophers deadlock needs and the ordering defuses.
func orderedScenario() func() error {
	a := mutex.New("bench-fork-a")
	b := mutex.New("bench-fork-b")
	set := mutex.NewOrderedLockSet(b, a)
	return func() error {
		set.AcquireAll()
		set.ReleaseAll()
		return nil
	}
}

// channelScenario returns an operation that pushes one item through a shared
// BoundedChannel drained by a dedicated consumer. The consumer exits when the
// process does.
func channelScenario() func() error {
	ch := channel.New[int]("bench-chan", 64)
	go func() {
		for {
			if _, err := ch.Receive(); err != nil {
				return
			}
		}
	}()
	return func() error {
		return ch.Send(1)
	}
}

// poolScenario returns an operation that submits a trivial task and waits for
// it to complete.
func poolScenario() func() error {
	p := pool.New(4, 64, pool.WithName("bench-pool"),
		pool.WithErrorSink(primitives.SinkFunc(func(error) {})))
	return func() error {
		done := make(chan struct{})
		if err := p.SubmitFunc("bench", func() error {
			close(done)
			return nil
		}); err != nil {
			return err
		}
		<-done
		return nil
	}
}

// runScenario executes op `operations` times spread across `units`
// goroutines, recording per-operation latency.
func runScenario(name string, op func() error, operations, units int) BenchmarkResult {
	durations := make([]time.Duration, 0, operations)
	errorCount := 0
	var mu sync.Mutex

	perUnit := operations / units
	if perUnit < 1 {
		perUnit = 1
	}

	start := time.Now()

	var g errgroup.Group
	for u := 0; u < units; u++ {
		g.Go(func() error {
			local := make([]time.Duration, 0, perUnit)
			localErrs := 0
			for i := 0; i < perUnit; i++ {
				opStart := time.Now()
				if err := op(); err != nil {
					localErrs++
				}
				local = append(local, time.Since(opStart))
			}
			mu.Lock()
			durations = append(durations, local...)
			errorCount += localErrs
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	total := time.Since(start)
	return summarize(name, units, durations, total, errorCount)
}

// summarize reduces raw per-operation latencies to a BenchmarkResult.
func summarize(name string, units int, durations []time.Duration, total time.Duration, errorCount int) BenchmarkResult {
	result := BenchmarkResult{
		Scenario:        name,
		Operations:      len(durations),
		ConcurrentUnits: units,
		TotalDuration:   total,
		ErrorCount:      errorCount,
		Timestamp:       time.Now(),
	}
	if len(durations) == 0 {
		return result
	}

	slices.Sort(durations)

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	result.MinDuration = durations[0]
	result.MaxDuration = durations[len(durations)-1]
	result.AvgDuration = sum / time.Duration(len(durations))
	result.MedianDuration = durations[len(durations)/2]
	result.P95Duration = durations[percentileIndex(len(durations), 95)]
	result.P99Duration = durations[percentileIndex(len(durations), 99)]
	if total > 0 {
		result.OpsPerSecond = float64(len(durations)) / total.Seconds()
	}
	return result
}

// percentileIndex returns the index of the p-th percentile in a sorted slice
// of length n.
func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// printResult logs a human-readable summary of one scenario.
func printResult(r BenchmarkResult) {
	log.Printf("  ops=%d errors=%d throughput=%.0f ops/s", r.Operations, r.ErrorCount, r.OpsPerSecond)
	log.Printf("  avg=%v median=%v p95=%v p99=%v max=%v",
		r.AvgDuration, r.MedianDuration, r.P95Duration, r.P99Duration, r.MaxDuration)
}

// saveJSONReport writes the report as indented JSON.
func saveJSONReport(report BenchmarkReport, path string) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Printf("failed to marshal report: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Printf("failed to write report: %v", err)
	}
}
