package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind int

const (
	KindSystem Kind = iota
	KindValidation
	KindNotFound
	KindCapacity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindCapacity:
		return "capacity"
	default:
		return "system"
	}
}

// Error carries a kind and a client-safe message. Err holds the internal cause
// and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Capacity(msg string) error {
	return &Error{Kind: KindCapacity, Message: msg}
}

func System(msg string, err error) error {
	return &Error{Kind: KindSystem, Message: msg, Err: err}
}

// KindOf reports the kind of err; untagged errors are system errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}

// Message returns the client-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindSystem {
		return e.Message
	}
	return "系統錯誤，請稍後再試"
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindCapacity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

var (
	capacityPhrases = []string{"event full", "is full", "capacity", "額滿", "已滿"}
	notFoundPhrases = []string{"not found", "does not exist", "不存在"}
)

// ClassifyMessage maps database error text (raised by triggers and stored
// procedures) to a kind. Only the data store calls this.
func ClassifyMessage(text string) Kind {
	lower := strings.ToLower(text)
	for _, p := range capacityPhrases {
		if strings.Contains(lower, p) {
			return KindCapacity
		}
	}
	for _, p := range notFoundPhrases {
		if strings.Contains(lower, p) {
			return KindNotFound
		}
	}
	return KindSystem
}
