package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidToken       = errors.New("невалидный токен")
	ErrRevokedToken       = errors.New("токен отозван")
	ErrUserNotFound       = errors.New("пользователь не найден")
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrDuplicateAccount   = errors.New("пользователь с таким username или email уже существует")
	ErrInvalidInput       = errors.New("некорректные данные")
	ErrStoreUnavailable   = errors.New("хранилище недоступно")
	ErrSessionNotRotated  = errors.New("профиль сохранен, но новые токены не выданы, выполните вход заново")
)

// InputError ошибка валидации конкретного поля
type InputError struct {
	Field  string
	Reason string
}

func (err *InputError) Error() string {
	return fmt.Sprintf("%s: %s", err.Field, err.Reason)
}

func (err *InputError) Unwrap() error {
	return ErrInvalidInput
}

func NewInputError(field string, reason string) error {
	return &InputError{Field: field, Reason: reason}
}
