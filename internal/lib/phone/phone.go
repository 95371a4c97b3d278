// Package phone нормализует телефонные номера, используемые как идентификатор
// арендатора. Идентификатором считается строка ровно из 11 цифр.
package phone

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/magabrotheeeer/atelier-backoffice/internal/errs"
)

// Normalize убирает из номера все символы, кроме цифр, и проверяет длину.
// Возвращает ErrValidation, если после очистки осталось не 11 цифр.
func Normalize(raw string) (string, error) {
	const op = "phone.Normalize"
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 11 {
		return "", fmt.Errorf("%s: phone must contain exactly 11 digits: %w", op, errs.ErrValidation)
	}
	return digits, nil
}
