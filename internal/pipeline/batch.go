package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Input is one batch item: marked text plus its origin label (usually the
// source file path).
type Input struct {
	Source string
	Text   string
}

// ReadInput loads a marked-text file into a batch item.
func ReadInput(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("read input %s: %w", path, err)
	}
	return Input{Source: path, Text: string(data)}, nil
}

// Batch processes the inputs on a fixed worker pool. Results come back in
// input order. One document failing, or even panicking, never takes down
// the batch; a panic becomes a failed Result for that document only.
func (p *Pipeline) Batch(ctx context.Context, inputs []Input) []*Result {
	results := make([]*Result, len(inputs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < p.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = p.runSafe(ctx, inputs[idx])
			}
		}()
	}

feed:
	for i := range inputs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i, in := range inputs {
		if results[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results[i] = &Result{Source: in.Source, Err: err, ErrMessage: err.Error()}
		}
	}
	return results
}

func (p *Pipeline) runSafe(ctx context.Context, in Input) (res *Result) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("document panic: %v", rec)
			p.log.Error("document processing panicked",
				zap.String("source", in.Source),
				zap.Any("panic", rec))
			res = &Result{Source: in.Source, Err: err, ErrMessage: err.Error()}
		}
	}()
	return p.Run(ctx, in.Text, in.Source)
}
