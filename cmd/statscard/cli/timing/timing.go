// Package timing measures the wall-clock cost of each generation step
// and renders the run report shown after a successful run.
package timing

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Measure runs fn and returns the elapsed wall time alongside fn's
// error. Results travel through the closure:
//
//	elapsed, err := timing.Measure(func() error {
//	    stars, err = client.StarCount(ctx, login, affiliations)
//	    return err
//	})
func Measure(fn func() error) (time.Duration, error) {
	start := time.Now()
	err := fn()
	return time.Since(start), err
}

// Step is one timed entry of a run report.
type Step struct {
	Name    string
	Elapsed time.Duration
}

// Report accumulates timed steps in execution order.
type Report struct {
	steps []Step
}

// Add appends a completed step.
func (r *Report) Add(name string, elapsed time.Duration) {
	r.steps = append(r.steps, Step{Name: name, Elapsed: elapsed})
}

// Total returns the summed duration of all steps.
func (r *Report) Total() time.Duration {
	var total time.Duration
	for _, s := range r.steps {
		total += s.Elapsed
	}
	return total
}

// Render writes the timing table to w.
func (r *Report) Render(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Step", "Time"})
	for _, s := range r.steps {
		t.AppendRow(table.Row{s.Name, FormatDuration(s.Elapsed)})
	}
	t.AppendFooter(table.Row{"Total", FormatDuration(r.Total())})
	t.Render()
}

// FormatDuration renders sub-second durations in milliseconds and
// everything else in seconds.
func FormatDuration(d time.Duration) string {
	if d >= time.Second {
		return fmt.Sprintf("%.4f s", d.Seconds())
	}
	return fmt.Sprintf("%.4f ms", float64(d.Microseconds())/1000)
}
