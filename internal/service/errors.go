package service

import (
	"errors"
	"fmt"
)

// Виды ошибок рабочего процесса. Репозитории возвращают их (возможно обернутыми),
// вызывающая сторона различает их через errors.Is.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrNotConfirmed     = errors.New("account is not confirmed")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrDuplicateAccount = errors.New("duplicate account")
	ErrAlreadyAssigned  = errors.New("incident is already assigned")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
