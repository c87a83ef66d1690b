// Package pipeline runs category scrapes over a bounded worker pool.
// Each worker owns its own extraction resource for the life of its
// batch, item failures are isolated and reported without stopping
// sibling work, and results come out in completion order.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"medisearch-backend/lib/catalog"
)

var tracer = otel.Tracer("lib/pipeline")

// Extractor turns one task into a product. Implementations wrap one
// render/API resource and are never used from more than one goroutine.
type Extractor interface {
	Extract(ctx context.Context, task Task) (catalog.Product, error)
	Close()
}

// ExtractorFactory builds one Extractor per worker slot. The pool
// closes every extractor it built once the batch drains.
type ExtractorFactory func(ctx context.Context) (Extractor, error)

// Result pairs a task with its outcome. Err set means the item failed;
// the partial Product may still carry whatever was extracted.
type Result struct {
	Task    Task
	Product catalog.Product
	Err     error
}

type Coordinator struct {
	workers int
	factory ExtractorFactory
}

// NewCoordinator builds a pool of the given fixed size. Sizes below one
// collapse to a single worker.
func NewCoordinator(workers int, factory ExtractorFactory) *Coordinator {
	if workers < 1 {
		workers = 1
	}
	return &Coordinator{workers: workers, factory: factory}
}

// Run processes every task and streams results over the returned
// channel, closed once all workers drain. No ordering is guaranteed.
// A worker slot whose extractor cannot be built is dropped and its
// share of the queue flows to the remaining workers; when no extractor
// could be built at all, every task is reported failed.
func (c *Coordinator) Run(ctx context.Context, tasks []Task) <-chan Result {
	ctx, span := tracer.Start(ctx, "Run")
	span.SetAttributes(
		attribute.Int("tasks", len(tasks)),
		attribute.Int("workers", c.workers),
	)

	results := make(chan Result, len(tasks))

	var extractors []Extractor
	for i := 0; i < c.workers; i++ {
		extractor, err := c.factory(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create extractor, dropping worker slot", "err", err)
			continue
		}
		extractors = append(extractors, extractor)
	}

	if len(extractors) == 0 {
		go func() {
			defer span.End()
			span.SetStatus(codes.Error, "no extractors")

			err := fmt.Errorf("no extractor could be created")
			for _, task := range tasks {
				results <- Result{Task: task, Err: err}
			}
			close(results)
		}()
		return results
	}

	queue := make(chan Task)

	var wg sync.WaitGroup
	for _, extractor := range extractors {
		wg.Add(1)
		go func(extractor Extractor) {
			defer wg.Done()
			defer extractor.Close()
			c.work(ctx, extractor, queue, results)
		}(extractor)
	}

	go func() {
		defer span.End()

		for _, task := range tasks {
			select {
			case queue <- task:
			case <-ctx.Done():
				span.SetStatus(codes.Error, "cancelled")
				span.RecordError(ctx.Err())
				close(queue)
				wg.Wait()
				close(results)
				return
			}
		}
		close(queue)
		wg.Wait()
		close(results)
	}()

	return results
}

// Collect drains Run into a slice, for callers that do not stream.
func (c *Coordinator) Collect(ctx context.Context, tasks []Task) []Result {
	var out []Result
	for result := range c.Run(ctx, tasks) {
		out = append(out, result)
	}
	return out
}

func (c *Coordinator) work(ctx context.Context, extractor Extractor, queue <-chan Task, results chan<- Result) {
	for task := range queue {
		product, err := c.processOne(ctx, extractor, task)
		if err != nil {
			slog.WarnContext(
				ctx, "failed to process product",
				"source", task.Source,
				"category", task.Category,
				"url", task.URL,
				"err", err,
			)
		}
		results <- Result{Task: task, Product: product, Err: err}
	}
}

// processOne runs one item inside its own span so a failing product
// never touches its siblings.
func (c *Coordinator) processOne(ctx context.Context, extractor Extractor, task Task) (product catalog.Product, err error) {
	ctx, span := tracer.Start(ctx, "processOne")
	span.SetAttributes(
		attribute.String("source", string(task.Source)),
		attribute.String("url", task.URL),
	)
	defer span.End()

	product, err = extractor.Extract(ctx, task)
	if err != nil {
		span.SetStatus(codes.Error, "extract failed")
		span.RecordError(err)
	}
	return product, err
}
