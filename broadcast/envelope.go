package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"

	"raidcourt/engine"
)

// Envelope is the frame every websocket message travels in, both ways.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

var ErrEmptyMessage = errors.New("empty message")

// Encode wraps payload in an envelope of the given type.
func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode: missing message type")
	}
	env := Envelope{Type: t}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t, err)
		}
		env.Data = b
	}
	return json.Marshal(env)
}

// EncodeEvent frames a match event under its wire name.
func EncodeEvent(e engine.Event) ([]byte, error) {
	return Encode(e.EventType(), e)
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, ErrEmptyMessage
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, err
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("decode: missing message type")
	}
	return env, nil
}

// DecodePayload unmarshals the envelope data into T. A missing payload
// yields the zero value.
func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return out, nil
}
