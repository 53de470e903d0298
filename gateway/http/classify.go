package http

import (
	stderrors "errors"
	"net/http"

	"github.com/Capitalisk/capitalisk-dex-http-api/engine"
)

// classify maps an invocation failure to the externally visible HTTP status
// and message. Engine rejections tagged as invalid-query surface as 400
// carrying the engine's own message; every other failure is an opaque 500 so
// internal detail never leaks to callers.
func classify(err error) (int, string) {
	var invokeErr *engine.InvokeError
	if stderrors.As(err, &invokeErr) && invokeErr.InvalidQuery() {
		return http.StatusBadRequest, "Invalid query: " + invokeErr.SourceMessage()
	}
	return http.StatusInternalServerError, "Server error"
}
