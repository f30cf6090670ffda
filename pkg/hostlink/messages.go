// Package hostlink defines the frames exchanged between a simulation host and
// an agent session. Every frame is one JSON text message.
package hostlink

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Response statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrNoCommand is returned for requests without a command.
var ErrNoCommand = errors.New("request has no command")

// Request is a host command with its positional arguments.
type Request struct {
	ID      string   `json:"id,omitempty"` // echoed in the response
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Response answers exactly one Request.
type Response struct {
	ID      string `json:"id,omitempty"`
	Status  string `json:"status"`
	Command string `json:"command"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// DecodeRequest parses one request frame.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("invalid request frame: %w", err)
	}
	if req.Command == "" {
		return req, ErrNoCommand
	}
	return req, nil
}

// OK builds the response for a handled request.
func OK(req Request, result any) Response {
	return Response{ID: req.ID, Status: StatusOK, Command: req.Command, Result: result}
}

// Fail builds the response for a failed request.
func Fail(req Request, err error) Response {
	return Response{ID: req.ID, Status: StatusError, Command: req.Command, Error: err.Error()}
}

// Encode serialises a response frame.
func (r Response) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s response: %w", r.Command, err)
	}
	return data, nil
}
