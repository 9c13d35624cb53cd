package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	unknownErrorMessage  = "Unknown error occurred"
	unknownUploadMessage = "Unknown upload error"
)

// ErrMaxRetriesExceeded is the cause reported when a call runs out of attempts
// without any more specific failure being captured.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")

// Kind classifies why a logical call failed.
type Kind int

const (
	// KindTransport means no HTTP response was received.
	KindTransport Kind = iota
	// KindTimeout means the per-attempt deadline expired.
	KindTimeout
	// KindStatus means the server answered with a 4xx/5xx status.
	KindStatus
	// KindDecode means a 2xx body could not be decoded.
	KindDecode
	// KindCanceled means the caller's context ended the call.
	KindCanceled
	// KindExhausted means the attempt budget ran out.
	KindExhausted
	// KindRequest means the request could not be built.
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindCanceled:
		return "canceled"
	case KindExhausted:
		return "exhausted"
	case KindRequest:
		return "request"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every failed logical call.
type Error struct {
	Kind   Kind
	Method string
	URL    string

	// StatusCode is zero when no response was received.
	StatusCode int

	// Body is the raw response body of a failed response, if any.
	Body []byte

	// Attempts is the number of network attempts made by the logical call.
	Attempts int

	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Method != "" {
		b.WriteString(e.Method)
		b.WriteString(" ")
	}
	if e.URL != "" {
		b.WriteString(e.URL)
		b.WriteString(": ")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, "http %d", e.StatusCode)
		if t := http.StatusText(e.StatusCode); t != "" {
			b.WriteString(" ")
			b.WriteString(t)
		}
		if m := bodyMessage(e.Body); m != "" {
			b.WriteString(": ")
			b.WriteString(m)
		}
		return b.String()
	}
	b.WriteString(e.Kind.String())
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Message is the human-readable text shown to users: the body's "message"
// field, else the underlying error text, else a generic message.
func (e *Error) Message() string {
	return messageFor(e, unknownErrorMessage)
}

// AsError extracts *Error from err.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsStatus reports whether err is an HTTP error response with the given code.
func IsStatus(err error, code int) bool {
	ae, ok := AsError(err)
	return ok && ae.Kind == KindStatus && ae.StatusCode == code
}

func messageFor(err error, generic string) string {
	if err == nil {
		return generic
	}
	if ae, ok := AsError(err); ok {
		if m := bodyMessage(ae.Body); m != "" {
			return m
		}
		if ae.Cause != nil {
			if m := strings.TrimSpace(ae.Cause.Error()); m != "" {
				return m
			}
		}
		return generic
	}
	if m := strings.TrimSpace(err.Error()); m != "" {
		return m
	}
	return generic
}

func bodyMessage(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	r := gjson.GetBytes(body, "message")
	if !r.Exists() {
		return ""
	}
	return strings.TrimSpace(r.String())
}
