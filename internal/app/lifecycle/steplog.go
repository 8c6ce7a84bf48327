// internal/app/lifecycle/steplog.go
package lifecycle

// Step records one write of a cascading operation. Cascades run as
// independent writes with no transaction around them, so the step log
// is the only record of how far a partially failed cascade got.
type Step struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
	Err   string `json:"err,omitempty"`
}

// StepLog is the ordered record of a cascade.
type StepLog []Step

func (l *StepLog) add(name string, count int64, err error) {
	s := Step{Name: name, Count: count}
	if err != nil {
		s.Err = err.Error()
	}
	*l = append(*l, s)
}

// Failed reports whether any step recorded an error.
func (l StepLog) Failed() bool {
	for _, s := range l {
		if s.Err != "" {
			return true
		}
	}
	return false
}
