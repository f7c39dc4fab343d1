package errs

import (
	"errors"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBookNotFound        = errors.New("book not found")
	ErrInvalidRequestKind  = errors.New("invalid request kind")
	ErrInsufficientBalance = errors.New("insufficient balance for the book")
	ErrNothingToReturn     = errors.New("book was never borrowed by the user")
	ErrOverReturn          = errors.New("all borrows of the book were already returned")
	ErrCapacityExceeded    = errors.New("return would exceed the book capacity")
	ErrAlreadyExists       = errors.New("already exists")
	ErrStorageFailure      = errors.New("storage failure")
	ErrUserName            = errors.New("user is required")
)

// IsConflict reports business-rule rejections of a loan request.
func IsConflict(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrNothingToReturn) ||
		errors.Is(err, ErrOverReturn) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrAlreadyExists)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrBookNotFound)
}
