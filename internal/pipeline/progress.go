package pipeline

import (
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// track draws a progress bar for a stage of total tasks. incr marks one task
// done; done must be called once the stage returns.
func (r *run) track(name string, total int) (incr func(), done func(err error)) {
	if !r.opts.Progress || total == 0 {
		return func() {}, func(error) {}
	}

	p := mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(name+": ", decor.WC{W: len(name) + 2, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
			decor.AverageETA(decor.ET_STYLE_GO),
			decor.OnComplete(decor.Name(""), ". done"),
		),
	)

	incr = func() { bar.Increment() }
	done = func(err error) {
		if err != nil {
			bar.Abort(false)
		}
		p.Wait()
	}
	return incr, done
}
