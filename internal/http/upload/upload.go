// Package upload разбирает multipart-запросы обработчиков, принимающих
// JSON вместе с файлом. JSON лежит в поле формы "data", файл — в своем
// именованном поле; обычный JSON-запрос без файла тоже принимается.
package upload

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
)

// maxMemory — порог буферизации multipart-формы в памяти.
const maxMemory = 10 << 20

// Decode читает тело запроса в dst и возвращает содержимое файлового
// поля fileField, если оно передано. Для application/json файл всегда nil.
func Decode(r *http.Request, dst any, fileField string) ([]byte, string, error) {
	const op = "upload.Decode"

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		return nil, "", nil
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	raw := r.FormValue("data")
	if raw == "" {
		return nil, "", fmt.Errorf("%s: missing data field", op)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	file, header, err := r.FormFile(fileField)
	if err == http.ErrMissingFile {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return content, contentType, nil
}
