package annotate

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AnnotateBatch annotates texts concurrently with at most workers
// goroutines (GOMAXPROCS when workers <= 0). Results keep the input order.
// The first failure cancels the remaining documents and is returned.
func (p *Pipeline) AnnotateBatch(ctx context.Context, texts []string, workers int) ([]*Result, error) {
	return p.batch(ctx, texts, workers, p.Annotate)
}

// AnnotateBatchLanguage is AnnotateBatch with the language forced to lang
// for every document.
func (p *Pipeline) AnnotateBatchLanguage(ctx context.Context, texts []string, lang string, workers int) ([]*Result, error) {
	return p.batch(ctx, texts, workers, func(text string) (*Result, error) {
		return p.AnnotateLanguage(text, lang)
	})
}

func (p *Pipeline) batch(ctx context.Context, texts []string, workers int, fn func(string) (*Result, error)) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range texts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := fn(text)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug("batch annotated", zap.Int("documents", len(texts)), zap.Int("workers", workers))
	return results, nil
}
