package softpipe

// PipelineBuilderOption is a functional option for configuring the CPU
// pipeline. Use the With* functions to create options.
type PipelineBuilderOption func(*pipelineImpl)

// WithWorkers sets how many row bands each stage is split into, one
// worker goroutine per band. The default is the logical CPU count.
//
// Parameters:
//   - workers: the worker count, minimum 1
//
// Returns:
//   - PipelineBuilderOption: option function to apply
func WithWorkers(workers int) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.workers = workers
	}
}
