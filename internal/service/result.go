package service

import "errors"

// Result is the envelope returned across the HTTP boundary.
type Result struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ResultError `json:"error,omitempty"`
}

type ResultError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func OK(message string, data interface{}) Result {
	return Result{Success: true, Message: message, Data: data}
}

// Fail renders err for the client. Database failures never expose details.
func Fail(err error) Result {
	kind := KindOf(err)
	msg := GenericMessage
	var se *Error
	if errors.As(err, &se) && kind != KindDatabase {
		msg = se.Message
	}
	return Result{Success: false, Error: &ResultError{Kind: kind, Message: msg}}
}
