package dfield

// Option configures a Generator.
//
// Example:
//
//	g := dfield.NewGenerator(dfield.WithWorkers(8))
//	defer g.Close()
type Option func(*generatorOptions)

type generatorOptions struct {
	workers    int
	bandHeight int
}

func defaultOptions() generatorOptions {
	return generatorOptions{
		workers:    0, // GOMAXPROCS
		bandHeight: 0, // chosen from the output height
	}
}

// WithWorkers sets the number of goroutines rows are spread over.
// Zero or less uses GOMAXPROCS; one computes rows in order on a single
// worker.
func WithWorkers(n int) Option {
	return func(o *generatorOptions) {
		o.workers = n
	}
}

// WithBandHeight sets how many output rows make up one work item.
// Zero or less picks a height that gives each worker several bands.
func WithBandHeight(rows int) Option {
	return func(o *generatorOptions) {
		o.bandHeight = rows
	}
}
