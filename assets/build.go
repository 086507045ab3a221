package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/dfield"
)

// Job describes one field to generate and where to save it.
type Job struct {
	Input  dfield.Bitmap
	Output string

	// Width and Height are the output size.
	Width, Height int
	Spread        int
}

// Build generates and saves each job in order with gen. A nil gen uses a
// temporary Generator.
//
// Jobs run one at a time; gen already spreads the rows of each field over
// its workers. ctx is checked between jobs, never inside one. A failing
// job does not stop the batch: every failure is collected and returned
// joined, followed by ctx.Err() if the batch was cut short.
func Build(ctx context.Context, gen *dfield.Generator, jobs []Job) error {
	if gen == nil {
		gen = dfield.NewGenerator()
		defer gen.Close()
	}

	log := Logger()
	var errs []error
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			log.Debug("assets: build cancelled", "done", i, "total", len(jobs))
			errs = append(errs, err)
			break
		}

		if err := runJob(gen, job); err != nil {
			log.Warn("assets: build job failed", "output", job.Output, "err", err)
			errs = append(errs, fmt.Errorf("assets: job %d (%s): %w", i, job.Output, err))
			continue
		}
		log.Debug("assets: built", "output", job.Output,
			"width", job.Width, "height", job.Height, "spread", job.Spread)
	}
	return errors.Join(errs...)
}

func runJob(gen *dfield.Generator, job Job) error {
	f, err := gen.Generate(job.Input, job.Width, job.Height, job.Spread)
	if err != nil {
		return err
	}
	return dfield.Save(job.Output, f)
}
