package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnsupportedAudio is returned when an audio payload is neither raw
// bytes, a base64 string, nor a buffer-like JSON form.
var ErrUnsupportedAudio = errors.New("unsupported audio format")

// nodeBuffer is the JSON shape a serialized Node.js Buffer arrives in.
type nodeBuffer struct {
	Type string `json:"type"`
	Data []int  `json:"data"`
}

// DecodeAudioBlob normalizes a JSON-encoded audio payload to raw bytes.
// Accepted forms: a base64 string (with or without a data-URL prefix), an
// array of byte values, or a serialized Buffer object. Anything else is
// ErrUnsupportedAudio.
func DecodeAudioBlob(blob json.RawMessage) ([]byte, error) {
	trimmed := strings.TrimSpace(string(blob))
	if trimmed == "" || trimmed == "null" {
		return nil, ErrUnsupportedAudio
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(blob, &s); err != nil {
			return nil, ErrUnsupportedAudio
		}
		return decodeBase64(s)
	case '[':
		var values []int
		if err := json.Unmarshal(blob, &values); err != nil {
			return nil, ErrUnsupportedAudio
		}
		return bytesFromInts(values)
	case '{':
		var buf nodeBuffer
		if err := json.Unmarshal(blob, &buf); err != nil || !strings.EqualFold(buf.Type, "buffer") {
			return nil, ErrUnsupportedAudio
		}
		return bytesFromInts(buf.Data)
	default:
		return nil, ErrUnsupportedAudio
	}
}

func decodeBase64(s string) ([]byte, error) {
	// Strip a data-URL prefix like "data:audio/webm;base64,".
	if strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, ","); idx >= 0 {
			s = s[idx+1:]
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrUnsupportedAudio
	}
	return decoded, nil
}

func bytesFromInts(values []int) ([]byte, error) {
	out := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, ErrUnsupportedAudio
		}
		out[i] = byte(v)
	}
	return out, nil
}
