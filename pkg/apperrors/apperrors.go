// Package apperrors defines the error taxonomy shared by services and the HTTP
// boundary, and the fiber ErrorHandler that turns it into JSON responses.
package apperrors

import (
	"errors"

	"aigc.wiki/configs/configslog"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
)

// Error is a user-facing failure. Message is safe to show to the client; Err,
// when set, is the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func Auth(msg string) *Error       { return &Error{Kind: KindAuth, Message: msg} }
func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }

// Internal wraps err with a generic message.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// Wrap keeps the kind and message of e and attaches a cause. errors.Is(result, e) holds.
func Wrap(e *Error, cause error) error {
	return &wrapped{kind: e, cause: cause}
}

type wrapped struct {
	kind  *Error
	cause error
}

func (w *wrapped) Error() string   { return w.kind.Message + ": " + w.cause.Error() }
func (w *wrapped) Unwrap() []error { return []error{w.kind, w.cause} }

// StatusCode maps err to an HTTP status.
func StatusCode(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fe.Code
		}
		return fiber.StatusInternalServerError
	}
	switch ae.Kind {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindAuth:
		return fiber.StatusUnauthorized
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Message returns the client-facing text for err.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Message != "" {
			return ae.Message
		}
		return "internal server error"
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "internal server error"
}

// ErrorHandler is installed as fiber.Config.ErrorHandler. Every error returned by
// a handler ends up here and is written as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusCode(err)
	if code >= fiber.StatusInternalServerError {
		configslog.Log.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)
	}
	return c.Status(code).JSON(fiber.Map{"error": Message(err)})
}
