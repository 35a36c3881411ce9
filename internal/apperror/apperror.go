// Package apperror defines the application error taxonomy and its mapping
// to HTTP responses. Handlers and middleware never build error bodies by
// hand; everything goes through WriteError so clients always see the same
// {code, message, request_id} shape.
package apperror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/sovaehr/authapi/internal/logger"
)

type Code string

const (
	CodeSignIn         Code = "sign_in_error"
	CodeSignOut        Code = "sign_out_error"
	CodeSignUp         Code = "sign_up_error"
	CodeEmailInUse     Code = "email_already_in_use"
	CodeDeleteUser     Code = "delete_user_error"
	CodeRetrieveUserID Code = "retrieve_user_id_error"
	CodeUserNotFound   Code = "user_not_found"
	CodeMissingToken   Code = "missing_token"
	CodeInvalidToken   Code = "invalid_token"
	CodeExpiredToken   Code = "expired_token"
	CodeInvalidEmail   Code = "invalid_email"
	CodeWeakPassword   Code = "weak_password"
	CodeInvalidInput   Code = "invalid_input"
	CodeInternal       Code = "internal_server_error"
)

// internalMessage is the only message internal errors ever show a client.
const internalMessage = "An internal server error occurred"

// Error is an immutable application error. The Code decides the HTTP status;
// the wrapped cause (if any) stays server-side.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// StatusCode maps the error code onto an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Code {
	case CodeSignIn, CodeSignOut, CodeMissingToken, CodeInvalidToken, CodeExpiredToken:
		return http.StatusUnauthorized
	case CodeSignUp, CodeInvalidEmail, CodeWeakPassword, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeEmailInUse:
		return http.StatusConflict
	case CodeUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func SignIn(msg string) *Error {
	return &Error{Code: CodeSignIn, Message: "Sign-in failed: " + msg}
}

func SignUp(msg string) *Error {
	return &Error{Code: CodeSignUp, Message: "Sign-up failed: " + msg}
}

func SignOut(msg string) *Error {
	return &Error{Code: CodeSignOut, Message: "Sign-out failed: " + msg}
}

func DeleteUser(msg string) *Error {
	return &Error{Code: CodeDeleteUser, Message: "Delete user failed: " + msg}
}

func RetrieveUserID(msg string) *Error {
	return &Error{Code: CodeRetrieveUserID, Message: "Retrieve user id failed: " + msg}
}

func EmailAlreadyInUse() *Error {
	return &Error{Code: CodeEmailInUse, Message: "Email already in use"}
}

func UserNotFound() *Error {
	return &Error{Code: CodeUserNotFound, Message: "User not found"}
}

func MissingToken() *Error {
	return &Error{Code: CodeMissingToken, Message: "Missing token"}
}

func InvalidToken() *Error {
	return &Error{Code: CodeInvalidToken, Message: "Invalid token"}
}

func ExpiredToken() *Error {
	return &Error{Code: CodeExpiredToken, Message: "Token expired"}
}

func InvalidEmail() *Error {
	return &Error{Code: CodeInvalidEmail, Message: "Invalid email format"}
}

func WeakPassword() *Error {
	return &Error{Code: CodeWeakPassword, Message: "Password does not meet complexity requirements"}
}

func InvalidInput(msg string) *Error {
	return &Error{Code: CodeInvalidInput, Message: "Invalid input: " + msg}
}

// Internal wraps an unexpected cause. The cause is retained for server-side
// diagnostics only and never serialized to the client.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: internalMessage, cause: cause}
}

// Body is the uniform error response shape.
type Body struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// WriteError maps err onto a status code and JSON error body. The *Error is
// looked up anywhere in the wrap chain; errors without one are treated as
// internal. Internal causes are logged with the request's trace context,
// never leaked to the client.
func WriteError(ctx context.Context, w http.ResponseWriter, err error, requestID string) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal(err)
	}

	message := appErr.Message
	if appErr.Code == CodeInternal {
		attrs := []any{"request_id", requestID, "error", appErr.Error()}
		if span := trace.SpanContextFromContext(ctx); span.HasTraceID() {
			attrs = append(attrs, "trace_id", span.TraceID().String())
		}
		logger.Log.Error("internal error", attrs...)
		message = internalMessage
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if encErr := json.NewEncoder(w).Encode(Body{
		Code:      string(appErr.Code),
		Message:   message,
		RequestID: requestID,
	}); encErr != nil {
		logger.Log.Error("failed to encode error body", "error", encErr)
	}
}
