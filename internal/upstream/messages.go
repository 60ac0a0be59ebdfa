package upstream

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/fdg312/careview/internal/viewstate"
)

const (
	MessageLoginRequired  = "로그인 후 이용 가능한 서비스입니다."
	MessageSessionExpired = "로그인이 만료되었어요. 다시 로그인해 주세요."
)

// ErrorMessage maps a fetch failure to a user-facing message.
// A message supplied by the backend wins over the generic texts.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnauthenticated) {
		return MessageLoginRequired
	}

	var se *StatusError
	if !errors.As(err, &se) {
		return fallback
	}
	if msg := backendMessage(se.Body); msg != "" {
		return msg
	}
	if IsUnauthorized(se) {
		return MessageSessionExpired
	}
	return fallback
}

// Describe returns a viewstate error mapper for a view whose generic
// failure text is fallback. A missing credential is its own state.
func Describe(fallback string) func(error) viewstate.Failure {
	return func(err error) viewstate.Failure {
		status := viewstate.StatusError
		if errors.Is(err, ErrUnauthenticated) {
			status = viewstate.StatusUnauthenticated
		}
		return viewstate.Failure{
			Status:       status,
			Message:      ErrorMessage(err, fallback),
			Unauthorized: IsUnauthorized(err),
		}
	}
}

// backendMessage digs a human readable message out of an error body.
// Accepted shapes: {"message":..}, {"detail":..}, {"error":".."},
// {"error":{"message":..}}.
func backendMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"message", "detail"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}

	switch e := payload["error"].(type) {
	case string:
		return strings.TrimSpace(e)
	case map[string]any:
		if s, ok := e["message"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
