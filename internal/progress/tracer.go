// Package progress reports the advance of long batch jobs, such as building
// a territory bundle, through a caller supplied callback that fires a
// bounded number of times.
package progress

// Func receives the current position and the total size.
type Func func(pos, total int)

// Tracer calls its callback at most n times while Step is called total
// times, roughly every total/n steps.
type Tracer struct {
	total  int
	chunks []int
	cb     Func
	pos    int
}

// NewTracer builds a tracer for total steps. If total is smaller than n the
// callback is never called.
func NewTracer(total int, cb Func, n int) *Tracer {
	t := &Tracer{total: total, cb: cb}
	if n <= 0 || cb == nil {
		return t
	}
	if chunk := total / n; chunk > 0 {
		t.chunks = make([]int, n)
		for i := range t.chunks {
			t.chunks[i] = i * chunk
		}
	}
	return t
}

// Step advances the tracer by one.
func (t *Tracer) Step() {
	t.pos++
	if len(t.chunks) > 0 && t.pos > t.chunks[0] {
		t.chunks = t.chunks[1:]
		t.cb(t.pos, t.total)
	}
}

func (t *Tracer) Pos() int { return t.pos }

// Percent converts a callback position into a percentage.
func Percent(pos, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(pos) / float64(total) * 100
}
