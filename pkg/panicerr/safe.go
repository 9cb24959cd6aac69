package panicerr

import (
	"github.com/sourcegraph/conc/panics"
)

// Safe wraps a function that returns an error, catching any panics and
// returning them as an error. Used to keep one malformed record or one bad
// report line from taking down the whole run.
func Safe(fn func() error) func() error {
	return func() error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn()
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}
