package automod

// DegradedError marks a rule failure where the detector failed open: the
// event passed without that signal. The rule runner logs these as warnings;
// anything else a rule returns is a real fault and logs as an error.
type DegradedError struct {
	Err error
}

func (e *DegradedError) Error() string {
	return "detector degraded: " + e.Err.Error()
}

func (e *DegradedError) Unwrap() error {
	return e.Err
}

// Degraded wraps err as a DegradedError. Returns nil when err is nil.
func Degraded(err error) error {
	if err == nil {
		return nil
	}
	return &DegradedError{Err: err}
}
