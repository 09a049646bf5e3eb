package automod

import (
	"sync"
)

// Effects accumulate what rules want to happen as a result of processing an
// event. Mutations are locked so rules could run concurrently in the future.
type Effects struct {
	mu sync.Mutex

	// verdicts raised by rules. At most one is acted on per event.
	Verdicts []Verdict
}

func (e *Effects) AddVerdict(v Verdict) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Verdicts = append(e.Verdicts, v)
}
