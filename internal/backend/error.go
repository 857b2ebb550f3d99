package backend

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jwalitptl/solar-admin/pkg/errors"
)

// GenericFailure is shown when the backend gives no usable message.
const GenericFailure = "Request failed. Please try again."

// Error is a failed backend call: a non-2xx status or success:false.
type Error struct {
	Status  int
	Message string
	Body    []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
}

// StatusCode maps the backend status to the status the dashboard should see.
func (e *Error) StatusCode() int {
	switch {
	case e.Status == http.StatusUnauthorized:
		return http.StatusUnauthorized
	case e.Status >= 400 && e.Status < 500:
		return e.Status
	case e.Status == http.StatusServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// Temporary reports whether the failure should count against the circuit breaker.
func (e *Error) Temporary() bool {
	return e.Status == 0 || e.Status >= 500
}

// AsError returns the backend error in err's chain.
func AsError(err error) (*Error, bool) {
	var be *Error
	if stderrors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// IsNotFound reports a 404 from the backend.
func IsNotFound(err error) bool {
	be, ok := AsError(err)
	return ok && be.Status == http.StatusNotFound
}

// ToAppError converts a backend failure into the service error taxonomy.
func ToAppError(resource string, err error) error {
	be, ok := AsError(err)
	if !ok {
		return err
	}
	switch {
	case be.Status == http.StatusNotFound:
		return &errors.AppError{Code: errors.ErrNotFound, Message: be.Message, Err: err}
	case be.Status == http.StatusUnauthorized:
		return &errors.AppError{Code: errors.ErrUnauthorized, Message: be.Message, Err: err}
	case be.Status == http.StatusForbidden:
		return &errors.AppError{Code: errors.ErrForbidden, Message: be.Message, Err: err}
	case be.Status == http.StatusConflict:
		return &errors.AppError{Code: errors.ErrConflict, Message: be.Message, Err: err}
	case be.Status >= 400 && be.Status < 500:
		return &errors.AppError{Code: errors.ErrBadRequest, Message: be.Message, Err: err}
	default:
		return errors.NewUpstream(fmt.Sprintf("%s: %s", resource, be.Message), err)
	}
}

// extractMessage pulls a human readable message out of an error body,
// trying the layouts the backend is known to use.
func extractMessage(body []byte) string {
	var probe struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
		Errors  []struct {
			Message string `json:"message"`
			Msg     string `json:"msg"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return ""
	}
	if probe.Message != "" {
		return probe.Message
	}
	if len(probe.Error) > 0 {
		var s string
		if json.Unmarshal(probe.Error, &s) == nil && s != "" {
			return s
		}
		var obj struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(probe.Error, &obj) == nil && obj.Message != "" {
			return obj.Message
		}
	}
	var msgs []string
	for _, e := range probe.Errors {
		switch {
		case e.Message != "":
			msgs = append(msgs, e.Message)
		case e.Msg != "":
			msgs = append(msgs, e.Msg)
		}
	}
	return strings.Join(msgs, "; ")
}
