package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error carries a backend failure back to the caller.  Detail is the
// human-readable message the backend supplied, falling back to a generic
// one so pages always have something to show.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
}

// errorBody covers the two envelope shapes the backend emits:
// {"detail": "..."} on auth endpoints and {"error": "..."} elsewhere.
type errorBody struct {
	Detail string `json:"detail"`
	Err    string `json:"error"`
}

func decodeError(status int, data []byte) *Error {
	var body errorBody
	_ = json.Unmarshal(data, &body)
	detail := body.Detail
	if detail == "" {
		detail = body.Err
	}
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &Error{Status: status, Detail: detail}
}

// IsAuthFailure reports whether err is a 401 from the backend: the bearer
// token is absent, invalid or expired, or the credentials were wrong.
func IsAuthFailure(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsApprovalPending reports whether err is the login rejection for an
// account that exists but has not been approved yet.  The backend signals
// it as a 403 whose detail mentions the pending approval.
func IsApprovalPending(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) &&
		apiErr.Status == http.StatusForbidden &&
		strings.Contains(strings.ToLower(apiErr.Detail), "pending approval")
}
