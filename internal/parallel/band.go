package parallel

// Band is a half-open range of rows [Start, End).
type Band struct {
	Start, End int
}

// Len returns the number of rows in the band.
func (b Band) Len() int { return b.End - b.Start }

// Bands splits rows into consecutive bands of at most size rows each.
// A size of 0 or less picks one that gives every worker about four bands.
func Bands(rows, size, workers int) []Band {
	if rows <= 0 {
		return nil
	}
	if size <= 0 {
		size = max(rows/(max(workers, 1)*4), 1)
	}

	bands := make([]Band, 0, (rows+size-1)/size)
	for start := 0; start < rows; start += size {
		bands = append(bands, Band{Start: start, End: min(start+size, rows)})
	}
	return bands
}

// ForEachBand runs fn once per band of rows on the pool and waits for all
// of them.
func (p *WorkerPool) ForEachBand(rows, size int, fn func(Band)) {
	bands := Bands(rows, size, p.workers)
	work := make([]func(), len(bands))
	for i, b := range bands {
		work[i] = func() { fn(b) }
	}
	p.ExecuteAll(work)
}
