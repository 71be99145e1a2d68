package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request describes one call against the API base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body is encoded as JSON when non-nil.
	Body any

	// File turns the request into multipart/form-data. Body is ignored.
	File *FilePart

	// SkipInvalidate suppresses the session invalidation hook on 401.
	// Used by login and logout, whose 401s say nothing about the current session.
	SkipInvalidate bool
}

// FilePart is a single file field of a multipart request.
type FilePart struct {
	Field       string
	FileName    string
	ContentType string
	Reader      io.Reader
}

// Response is a completed HTTP exchange with the body fully read.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Message returns the "message" field of a JSON body, or "".
func (r *Response) Message() string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}

// Err returns nil for 2xx responses and a *StatusError otherwise, using
// fallback when the server did not provide a message.
func (r *Response) Err(fallback string) error {
	if r.OK() {
		return nil
	}
	msg := r.Message()
	if msg == "" {
		msg = fallback
	}
	return &StatusError{Status: r.Status, Message: msg}
}
