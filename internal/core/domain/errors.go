package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedTime           = errors.New("malformed time of day")
	ErrInvalidBlock            = errors.New("invalid time block")
	ErrInvalidDuration         = errors.New("invalid slot duration")
	ErrInvalidBuffer           = errors.New("invalid buffer minutes")
	ErrInvalidWeekday          = errors.New("invalid weekday")
	ErrInvalidException        = errors.New("invalid schedule exception")
	ErrInvalidStatusTransition = errors.New("invalid exception status transition")
	ErrInvalidRecurrence       = errors.New("invalid recurrence pattern")
	ErrUnsatisfiableRecurrence = errors.New("recurrence pattern produces no occurrences")
	ErrSeriesTooLong           = errors.New("recurrence series exceeds the maximum number of occurrences")

	// Запись из хранилища не прошла проверку: виновато хранилище, а не клиент
	ErrInvalidStoredData = errors.New("invalid stored data")
)

var validationErrors = []error{
	ErrMalformedTime,
	ErrInvalidBlock,
	ErrInvalidDuration,
	ErrInvalidBuffer,
	ErrInvalidWeekday,
	ErrInvalidException,
	ErrInvalidStatusTransition,
	ErrInvalidRecurrence,
	ErrUnsatisfiableRecurrence,
	ErrSeriesTooLong,
}

// IsValidationError: ошибка проверки входных данных
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StoredDataError помечает ошибку проверки данных, прочитанных из хранилища.
// Остальные ошибки возвращаются как есть.
func StoredDataError(err error) error {
	if err == nil || !IsValidationError(err) || errors.Is(err, ErrInvalidStoredData) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidStoredData, err)
}
