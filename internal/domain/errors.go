package domain

import (
	"errors"
	"fmt"
)

// Таксономия ошибок ядра. Вызывающий код различает их через errors.Is / errors.As.
var (
	// ErrInvalidArgument: нарушено предусловие: пустой payload, пустой фильтр удаления,
	// пустой список id, таблица вне allow-list и т.п. Ядро такие ошибки не ретраит.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized: у актора нет прав на операцию.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound: доменный слой не нашел запись (affected rows = 0 и т.п.).
	ErrNotFound = errors.New("not found")

	// ErrStorage: метка для errors.Is(err, ErrStorage); конкретика лежит в *StorageError.
	ErrStorage = errors.New("storage error")
)

// InvalidArgument оборачивает ErrInvalidArgument с пояснением.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Unauthorized оборачивает ErrUnauthorized с пояснением.
func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

// StorageError несет исходную ошибку драйвера. Отмена контекста тоже попадает сюда:
// операция в этом случае считается незакоммиченной.
type StorageError struct {
	Op    string // create, read, update ...
	Table string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is позволяет писать errors.Is(err, domain.ErrStorage).
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
