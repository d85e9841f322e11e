package ai

import "fmt"

// SchemaError reports a model response that could not be parsed into the
// requested structured shape, even after repair. Raw carries the response
// text for diagnosis. It is a per-chunk failure: callers skip the chunk,
// they do not retry here.
type SchemaError struct {
	Raw string
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("model response failed schema validation: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
