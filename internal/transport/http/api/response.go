// Package api defines the JSON envelope every endpoint responds with.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorInfo is the machine-readable error half of the envelope. Code is a
// stable snake_case identifier clients can switch on; Message is for humans.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope wraps every response body. Exactly one of Data and Error is set.
type Envelope struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	RequestID string     `json:"requestId,omitempty"`
}

func write(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

// Success writes a 200 envelope around data.
func Success(w http.ResponseWriter, data any, requestID string) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

// Created writes a 201 envelope around data.
func Created(w http.ResponseWriter, data any, requestID string) {
	write(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

// Fail writes an error envelope with the given status and error code.
func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	write(w, status, Envelope{Success: false, Error: &ErrorInfo{Code: code, Message: message}, RequestID: requestID})
}
