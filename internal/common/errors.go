package common

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound     = errors.New("requested resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden access")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("resource conflict") // e.g. session id collision
	ErrValidation   = errors.New("validation failed")

	// Marketplace API failures.
	ErrMissingToken = errors.New("missing access token")
	ErrMissingActor = errors.New("missing user id")
	ErrUpstream     = errors.New("marketplace request failed")
	ErrDecode       = errors.New("unexpected response from marketplace")
)

// UpstreamError is a non-2xx answer from the marketplace API.
type UpstreamError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// ValidationError lists the form fields that failed local validation,
// keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// OrNil returns e only when some field failed.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrMissingToken) || errors.Is(err, ErrMissingActor) {
		return http.StatusUnauthorized
	}

	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		switch upErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return upErr.Status
		}
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrUpstream) || errors.Is(err, ErrDecode) {
		return http.StatusBadGateway
	}

	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// Message is the text shown to the user for err. Internal details stay in
// the logs.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingToken):
		return "Access token not found. Please sign in again."
	case errors.Is(err, ErrMissingActor):
		return "User id not found. Please sign in again."
	case errors.Is(err, ErrDecode):
		return "Unexpected response from the server."
	case errors.Is(err, ErrUpstream):
		return "The marketplace could not complete the request."
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrForbidden), errors.Is(err, ErrNotFound):
		return err.Error()
	}
	return "Something went wrong. Please try again later."
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
