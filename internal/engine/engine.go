package engine

import (
	"context"
	"net/http"
	"time"

	"rowkit/internal/frame"
	"rowkit/internal/pipeline"
)

type Engine struct {
	runner  *pipeline.Runner
	metrics *http.Server
}

// Run executes the job once, then releases the pipeline and stops the
// metrics endpoint.
func (e *Engine) Run(ctx context.Context) (*frame.Dataset, error) {
	out, err := e.runner.Run(ctx)
	cerr := e.runner.Close()

	if e.metrics != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = e.metrics.Shutdown(sctx)
		cancel()
	}
	if err != nil {
		return nil, err
	}
	return out, cerr
}
