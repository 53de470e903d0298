package engine

import "fmt"

// InvalidQueryErrorName is the wire name engines attach to rejections caused
// by bad request parameters. Replies tagged with it are the caller's fault and
// map to a 400 at the HTTP layer; everything else is a server-side failure.
const InvalidQueryErrorName = "InvalidQueryError"

// SourceError is the engine-side error that caused an invocation to fail,
// carried inside the reply envelope's error object.
type SourceError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// InvokeError reports an invocation the engine answered with an error
// envelope. The transport worked; the engine rejected or failed the action.
type InvokeError struct {
	Command Command
	Message string
	Source  *SourceError
}

func (e *InvokeError) Error() string {
	if e.Source != nil {
		return fmt.Sprintf("%s: %s (%s: %s)", e.Command, e.Message, e.Source.Name, e.Source.Message)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Message)
}

// InvalidQuery reports whether the engine rejected the invocation because of
// invalid request parameters.
func (e *InvokeError) InvalidQuery() bool {
	return e.Source != nil && e.Source.Name == InvalidQueryErrorName
}

// SourceMessage returns the engine-side error message, falling back to the
// envelope's top-level message when no source error was supplied.
func (e *InvokeError) SourceMessage() string {
	if e.Source != nil && e.Source.Message != "" {
		return e.Source.Message
	}
	return e.Message
}
