package delivery

import (
	"errors"
	"fmt"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelTelegram Channel = "telegram"
)

// Outcome is the result of one delivery attempt. Exactly one of Sent,
// Skipped or Err is set.
type Outcome struct {
	Channel Channel
	Sent    bool
	Skipped bool
	Reason  string // why the attempt was skipped
	Err     error
}

// Kind classifies a failed outcome for logging: "api" when the remote
// service rejected the request, "transport" otherwise.
func (o Outcome) Kind() string {
	if o.Err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(o.Err, &apiErr) {
		return "api"
	}
	return "transport"
}

// APIError is an application-level rejection reported in a response body,
// regardless of the HTTP status that carried it.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Description)
}

// TransportError covers network failures and responses that could not be
// interpreted.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Skip returns an outcome for a channel that was not attempted.
func Skip(channel Channel, reason string) Outcome {
	return Outcome{Channel: channel, Skipped: true, Reason: reason}
}

// Attempt runs send and records the result. It never panics the run and
// never returns an error itself.
func Attempt(channel Channel, send func() error) Outcome {
	if err := send(); err != nil {
		return Outcome{Channel: channel, Err: err}
	}
	return Outcome{Channel: channel, Sent: true}
}

// MaskToken returns a form of a secret safe for logs.
func MaskToken(token string) string {
	if len(token) > 12 {
		return token[:7] + "..." + token[len(token)-4:]
	}
	return "****"
}
