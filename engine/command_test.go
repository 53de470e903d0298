package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand_Forms(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Command
		display string
		subject string
	}{
		{
			name:    "engine action",
			cmd:     Command{Alias: "capitalisk-dex", Action: "getOrderBook"},
			display: "capitalisk-dex:getOrderBook",
			subject: "capitalisk-dex.getOrderBook",
		},
		{
			name:    "chain adapter action",
			cmd:     Command{Alias: "lsk_chain", Action: "getAccount"},
			display: "lsk_chain:getAccount",
			subject: "lsk_chain.getAccount",
		},
		{
			name:    "bootstrap announce",
			cmd:     Command{Alias: "capitalisk-dex-http-api", Action: ActionBootstrap},
			display: "capitalisk-dex-http-api:bootstrap",
			subject: "capitalisk-dex-http-api.bootstrap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.display, tt.cmd.String())
			assert.Equal(t, tt.subject, tt.cmd.Subject())
		})
	}
}

func TestInvokeError_Error(t *testing.T) {
	withSource := &InvokeError{
		Command: Command{Alias: "dex", Action: "getBids"},
		Message: "invoke failed",
		Source:  &SourceError{Name: "InvalidQueryError", Message: "limit too large"},
	}
	assert.Equal(t, "dex:getBids: invoke failed (InvalidQueryError: limit too large)", withSource.Error())

	withoutSource := &InvokeError{
		Command: Command{Alias: "dex", Action: "getBids"},
		Message: "invoke failed",
	}
	assert.Equal(t, "dex:getBids: invoke failed", withoutSource.Error())
}

func TestInvokeError_InvalidQuery(t *testing.T) {
	tests := []struct {
		name     string
		source   *SourceError
		expected bool
	}{
		{
			name:     "tagged invalid query",
			source:   &SourceError{Name: "InvalidQueryError", Message: "bad limit"},
			expected: true,
		},
		{
			name:     "different source error",
			source:   &SourceError{Name: "OrderBookError", Message: "unavailable"},
			expected: false,
		},
		{
			name:     "tag is case sensitive",
			source:   &SourceError{Name: "invalidqueryerror", Message: "bad limit"},
			expected: false,
		},
		{
			name:     "no source error",
			source:   nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &InvokeError{
				Command: Command{Alias: "dex", Action: "getBids"},
				Message: "invoke failed",
				Source:  tt.source,
			}
			assert.Equal(t, tt.expected, err.InvalidQuery())
		})
	}
}

func TestInvokeError_SourceMessage(t *testing.T) {
	withSource := &InvokeError{
		Message: "top-level message",
		Source:  &SourceError{Name: "InvalidQueryError", Message: "source message"},
	}
	assert.Equal(t, "source message", withSource.SourceMessage())

	emptySource := &InvokeError{
		Message: "top-level message",
		Source:  &SourceError{Name: "InvalidQueryError"},
	}
	assert.Equal(t, "top-level message", emptySource.SourceMessage())

	noSource := &InvokeError{Message: "top-level message"}
	assert.Equal(t, "top-level message", noSource.SourceMessage())
}
