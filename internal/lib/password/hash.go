// Package password реализует хеширование и проверку паролей владельцев ателье.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash возвращает bcrypt‑хэш пароля для хранения в базе.
func Hash(password string) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Compare сверяет сохраненный bcrypt‑хэш с введённым паролем.
// Возвращает nil при совпадении.
func Compare(storedHash, candidate string) error {
	const op = "password.Compare"
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
