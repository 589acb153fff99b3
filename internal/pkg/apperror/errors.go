package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeRevisionLimit     ErrorCode = "REVISION_LIMIT_REACHED"
	ErrCodeGigUnavailable    ErrorCode = "GIG_UNAVAILABLE"
	ErrCodeSelfPurchase      ErrorCode = "SELF_PURCHASE"
)

// AppError — типизированная ошибка уровня приложения. Details несёт
// машиночитаемый контекст для клиента, например текущий статус заказа
// при отклонённом переходе.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]string
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail добавляет пару ключ/значение в Details и возвращает копию,
// чтобы не мутировать общие sentinel-ошибки.
func (e *AppError) WithDetail(key, value string) *AppError {
	clone := *e
	clone.Details = make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeSelfPurchase:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeInvalidTransition, ErrCodeRevisionLimit, ErrCodeGigUnavailable:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeForbidden
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

// IsConflict покрывает оба «ожидаемых» исхода гонки переходов:
// проигравший CAS и переход, чьё предусловие уже не выполняется.
func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) &&
		(appErr.Code == ErrCodeConflict || appErr.Code == ErrCodeInvalidTransition)
}

func IsRevisionLimit(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeRevisionLimit
}

var (
	ErrOrderNotFound    = New(ErrCodeNotFound, "заказ не найден")
	ErrGigNotFound      = New(ErrCodeNotFound, "услуга не найдена")
	ErrCategoryNotFound = New(ErrCodeNotFound, "категория не найдена")
	ErrReviewNotFound   = New(ErrCodeNotFound, "отзыв не найден")
	ErrUnauthorized     = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden        = New(ErrCodeForbidden, "недостаточно прав")
	ErrNotParticipant   = New(ErrCodeForbidden, "вы не участник сделки в требуемой роли")
	ErrStatusConflict   = New(ErrCodeConflict, "статус заказа изменился, повторите запрос")
	ErrRevisionLimit    = New(ErrCodeRevisionLimit, "лимит доработок исчерпан")
	ErrGigUnavailable   = New(ErrCodeGigUnavailable, "услуга недоступна для покупки")
	ErrSelfPurchase     = New(ErrCodeSelfPurchase, "нельзя купить собственную услугу")
)
