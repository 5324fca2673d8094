package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"synckit/pkg/concurrency/channel"
	"synckit/pkg/concurrency/mutex"
	"synckit/pkg/concurrency/pool"
	"synckit/pkg/concurrency/semaphore"
	"synckit/pkg/logging"
	"synckit/pkg/primitives"
)

type Configuration struct {
	Producers int
	Workers   int
	Items     int
	QueueSize int
	LogLevel  string
	LogPath   string
}

func main() {
	config := parseArguments()

	if err := initializeLogging(config); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	fmt.Printf("Running pipeline demo: %d producers, %d workers, %d items, queue %d\n",
		config.Producers, config.Workers, config.Items, config.QueueSize)

	if err := runPipelineDemo(config); err != nil {
		log.Fatalf("Pipeline demo failed: %v", err)
	}

	if err := runTransferDemo(); err != nil {
		log.Fatalf("Transfer demo failed: %v", err)
	}
}

// parseArguments processes command-line flags
func parseArguments() Configuration {
	var config Configuration

	flag.IntVar(&config.Producers, "producers", 4, "Number of producer units")
	flag.IntVar(&config.Workers, "workers", 4, "Number of pool workers")
	flag.IntVar(&config.Items, "items", 1000, "Total items to push through the pipeline")
	flag.IntVar(&config.QueueSize, "queue", 32, "Bounded channel capacity")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.StringVar(&config.LogPath, "log", "", "Log file path (default stderr)")

	flag.Parse()

	return config
}

// initializeLogging wires the toolkit logger from the CLI flags.
func initializeLogging(config Configuration) error {
	return logging.Init(logging.Config{
		Level:      logging.LogLevel(strings.ToUpper(config.LogLevel)),
		OutputPath: config.LogPath,
		Format:     "text",
	})
}

// runPipelineDemo pushes items from several producers through a
// BoundedChannel into a WorkerPool and verifies every item was handled
// exactly once. The channel's backpressure keeps the producers honest.
func runPipelineDemo(config Configuration) error {
	stage := channel.New[int]("demo-stage", config.QueueSize)

	var handled atomic.Int64
	var failures atomic.Int64
	sink := primitives.SinkFunc(func(err error) {
		failures.Add(1)
		logging.Errorf("pipeline task failed: %v", err)
	})

	workers := pool.New(config.Workers, config.QueueSize,
		pool.WithName("demo-pool"), pool.WithErrorSink(sink))

	admission := semaphore.New("demo-admission", config.Producers)

	var producers sync.WaitGroup
	perProducer := config.Items / config.Producers
	for p := 0; p < config.Producers; p++ {
		producers.Add(1)
		go func(id int) {
			defer producers.Done()
			for i := 0; i < perProducer; i++ {
				admission.Acquire()
				item := id*perProducer + i
				if err := stage.Send(item); err != nil {
					admission.Release()
					logging.Warnf("producer %d stopped: %v", id, err)
					return
				}
				admission.Release()
			}
		}(p)
	}

	// Bridge the channel into the pool: one forwarder drains the stage and
	// submits each item as a task.
	bridgeDone := make(chan struct{})
	go func() {
		defer close(bridgeDone)
		for {
			item, err := stage.Receive()
			if err != nil {
				return
			}
			n := item
			if err := workers.SubmitFunc(fmt.Sprintf("item-%d", n), func() error {
				time.Sleep(time.Duration(rand.Intn(200)) * time.Microsecond)
				handled.Add(1)
				return nil
			}); err != nil {
				return
			}
		}
	}()

	producers.Wait()
	if err := stage.Close(); err != nil {
		return err
	}
	<-bridgeDone

	if err := workers.Shutdown(true); err != nil {
		return err
	}

	total := int64(perProducer * config.Producers)
	fmt.Printf("Pipeline complete: %d/%d items handled, %d failures, pool state %s\n",
		handled.Load(), total, failures.Load(), workers.State())
	if handled.Load() != total {
		return fmt.Errorf("expected %d handled items, got %d", total, handled.Load())
	}
	return nil
}

// runTransferDemo moves value between accounts guarded by per-account locks,
// taking both sides through an OrderedLockSet so opposite-direction transfers
// cannot deadlock.
func runTransferDemo() error {
	const (
		transfers = 500
		initial   = 1000
	)

	lockA := mutex.New("account-a")
	lockB := mutex.New("account-b")
	balances := map[string]int{"a": initial, "b": initial}

	forward := mutex.NewOrderedLockSet(lockA, lockB)
	backward := mutex.NewOrderedLockSet(lockB, lockA)

	var wg sync.WaitGroup
	transfer := func(set *mutex.OrderedLockSet, from, to string) {
		defer wg.Done()
		for i := 0; i < transfers; i++ {
			set.AcquireAll()
			balances[from]--
			balances[to]++
			set.ReleaseAll()
		}
	}

	wg.Add(2)
	go transfer(forward, "a", "b")
	go transfer(backward, "b", "a")
	wg.Wait()

	total := balances["a"] + balances["b"]
	fmt.Printf("Transfer complete: a=%d b=%d (total %d)\n", balances["a"], balances["b"], total)
	if total != 2*initial {
		return fmt.Errorf("value was created or destroyed: total %d", total)
	}
	return nil
}
