package service

import (
	"errors"
	"fmt"
)

// Виды отказов движка. Конкретные ошибки несут точное сообщение и
// разворачиваются (errors.Is) в один из этих видов; транспортный слой
// отображает вид в код ответа.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation")
	ErrConflict   = errors.New("conflict")
)

type serviceError struct {
	kind error
	msg  string
}

func (e *serviceError) Error() string { return e.msg }
func (e *serviceError) Unwrap() error { return e.kind }

func notFoundf(format string, args ...interface{}) error {
	return &serviceError{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...interface{}) error {
	return &serviceError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) error {
	return &serviceError{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}
