// Package apperrors описывает таблицу ошибок приложения и их отображение на HTTP-статусы.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind классифицирует ошибку для вызывающей стороны.
type Kind string

const (
	KindValidation       Kind = "VALIDATION_ERROR"
	KindNotFound         Kind = "NOT_FOUND"
	KindInvalidOperation Kind = "INVALID_OPERATION"
	KindConflict         Kind = "CONFLICT"
	KindStoreUnavailable Kind = "STORE_UNAVAILABLE"
	KindInternal         Kind = "INTERNAL_ERROR"
)

// Error — структурированная ошибка приложения.
type Error struct {
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Details []string `json:"errors,omitempty"`
	Err     error    `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetails добавляет детали (например, список невалидных полей).
func (e *Error) WithDetails(details ...string) *Error {
	e.Details = append(e.Details, details...)
	return e
}

// New создаёт ошибку заданного вида.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap оборачивает причину err ошибкой заданного вида.
func Wrap(err error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func InvalidOperation(format string, args ...any) *Error {
	return New(KindInvalidOperation, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

// Unavailable помечает сбой связи с хранилищем (таймаут, обрыв соединения).
func Unavailable(err error, format string, args ...any) *Error {
	return Wrap(err, KindStoreUnavailable, format, args...)
}

// KindOf возвращает вид ошибки; неизвестные ошибки считаются внутренними.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is проверяет, что err (или одна из обёрнутых ошибок) имеет вид kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus возвращает HTTP-статус для ошибки.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case "":
		return http.StatusOK
	case KindValidation, KindInvalidOperation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable сообщает, может ли вызывающая сторона повторить запрос (с backoff).
// Внутри ядра повторов нет.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindConflict, KindStoreUnavailable:
		return true
	default:
		return false
	}
}

// PublicMessage возвращает сообщение, которое можно отдать клиенту.
// Для внутренних ошибок детали не раскрываются.
func PublicMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return "internal server error"
	}
	switch appErr.Kind {
	case KindInternal:
		return "internal server error"
	case KindStoreUnavailable:
		return "storage temporarily unavailable"
	default:
		return appErr.Message
	}
}

// DetailsOf возвращает детали ошибки, если они есть.
func DetailsOf(err error) []string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}
