// Package errs определяет общие категории ошибок доменного слоя.
// Обработчики HTTP сопоставляют их со статус‑кодами, не разбирая текст ошибки.
package errs

import "errors"

var (
	// ErrNotFound — арендатор или запись не найдены либо принадлежат другому
	// арендатору. Эти два случая неразличимы намеренно, чтобы не раскрывать
	// существование чужих записей.
	ErrNotFound = errors.New("not found")
	// ErrValidation — некорректный формат входных данных, например телефон
	// не из 11 цифр.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized — неверные учетные данные.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUpstream — внешний сервис (платежный шлюз, хранилище файлов)
	// недоступен или вернул ошибку.
	ErrUpstream = errors.New("upstream failure")
)
