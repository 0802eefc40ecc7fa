package taxonomy

import "fmt"

// LoadError reports a dataset that could not be read, parsed or validated.
type LoadError struct {
	Dataset string
	Path    string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("taxonomy: load %s from %s: %v", e.Dataset, e.Path, e.Cause)
	}
	return fmt.Sprintf("taxonomy: load %s: %v", e.Dataset, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
