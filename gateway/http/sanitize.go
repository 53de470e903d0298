package http

import (
	"net/url"
	"strconv"
)

// SanitizeQuery normalizes raw query parameters into the typed payload the
// engine expects. Pure and total: it never rejects input. Recognized integer
// fields (limit, depth) are parsed to int when parseable and passed through
// as strings otherwise; malformed numerics are an engine-side validation
// concern, not a gateway one. Legacy address keys are renamed with the old
// key removed. Everything else passes through verbatim.
func SanitizeQuery(raw map[string]string) map[string]any {
	sanitized := make(map[string]any, len(raw))
	for key, value := range raw {
		sanitized[key] = value
	}

	for _, key := range []string{"limit", "depth"} {
		if value, ok := raw[key]; ok {
			if parsed, err := strconv.Atoi(value); err == nil {
				sanitized[key] = parsed
			}
		}
	}

	if sender, ok := raw["senderId"]; ok {
		sanitized["senderAddress"] = sender
		delete(sanitized, "senderId")
	}
	if recipient, ok := raw["recipientId"]; ok {
		sanitized["recipientAddress"] = recipient
		delete(sanitized, "recipientId")
	}

	return sanitized
}

// flattenQuery reduces URL query values to the first value per key, the shape
// sanitization and the engine payload work with.
func flattenQuery(values url.Values) map[string]string {
	raw := make(map[string]string, len(values))
	for key, list := range values {
		if len(list) > 0 {
			raw[key] = list[0]
		}
	}
	return raw
}
