package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"flyer-studio/models"
)

// DecodeRequest parses a JSON generation request. The property and agent
// members may be absent or null, but when present they must be objects;
// anything else is a ValidationError rather than a silently empty struct.
// Numeric listing fields may be sent as bare JSON numbers.
func DecodeRequest(data []byte) (*models.GenerationRequest, error) {
	var shape map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, &models.ValidationError{Reason: fmt.Sprintf("request is not a JSON object: %v", err)}
	}

	for _, field := range []string{"property", "agent"} {
		raw, ok := shape[field]
		if !ok || isJSONNull(raw) {
			continue
		}
		if !isJSONObject(raw) {
			return nil, &models.ValidationError{Field: field, Reason: "must be an object"}
		}
	}

	var req models.GenerationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &models.ValidationError{Reason: err.Error()}
	}
	req.Kind = req.Kind.Normalized()
	if !req.Kind.IsValid() {
		return nil, &models.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown flyer kind %q", req.Kind)}
	}
	return &req, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
