package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("недопустимая стоимость bcrypt: %d", cost)
	}
	return &BcryptHasher{cost: cost}, nil
}

func (hasher *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("ошибка хэширования: %w", err)
	}
	return string(hashed), nil
}

func (hasher *BcryptHasher) Verify(password string, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// MaxPasswordBytes bcrypt не принимает пароли длиннее 72 байт
const MaxPasswordBytes = 72
