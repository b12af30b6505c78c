package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrEmptyData = errors.New("envelope has no data")

// Envelope is the {success, message?, data} wrapper every API response uses,
// whether it came from the backend or was synthesized locally.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

// NewEnvelope wraps data in a successful envelope.
func NewEnvelope(data any, message string) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode envelope data: %w", err)
	}
	return Envelope{Success: true, Message: message, Data: raw}, nil
}

// DecodeData unmarshals the envelope payload into T.
func DecodeData[T any](env Envelope) (T, error) {
	var out T
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, ErrEmptyData
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decode envelope data: %w", err)
	}
	return out, nil
}
