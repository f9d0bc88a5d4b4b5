package cli

import (
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/law-makers/catalogsync/internal/app"
)

// newProgress returns a bar on stderr, or a silent one when output is quiet or JSON.
// A negative max renders a spinner until ChangeMax is called.
func newProgress(a *app.Application, max int, description string) *progressbar.ProgressBar {
	var w io.Writer = os.Stderr
	if a.Config.Quiet || a.Config.JSONLog {
		w = io.Discard
	}

	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}
