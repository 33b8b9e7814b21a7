package spinner

import (
	"time"

	"github.com/briandowns/spinner"
)

// StartSpinner starts a terminal spinner with the given message.
// Returns a stop function to halt and clear the spinner.
//
// Usage: assign the spinner to a 'stop' variable, run some code, then call stop().
// i.e.:
//
//	stop := spinner.StartSpinner("Your message here ")
//	err := lib.SomeOperation()
//	stop()
//	if err != nil { return err }
func StartSpinner(message string) func() {
	// Use a nice character set; CharSets[14] is a good default.
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()

	return func() {
		s.Stop()
	}
}

// StatusSpinner is a spinner whose message can be swapped while it runs,
// for long operations that report progress in stages.
type StatusSpinner struct {
	s *spinner.Spinner
}

// StartStatusSpinner starts a spinner showing message until SetMessage
// replaces it.
func StartStatusSpinner(message string) *StatusSpinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()
	return &StatusSpinner{s: s}
}

// SetMessage replaces the text shown next to the spinner.
func (sp *StatusSpinner) SetMessage(message string) {
	sp.s.Suffix = " " + message
}

// Stop halts and clears the spinner.
func (sp *StatusSpinner) Stop() {
	sp.s.Stop()
}
