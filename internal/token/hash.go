package token

import (
	"crypto/sha256"
	"encoding/base64"
)

// Hash — детерминированный односторонний хэш «сырого» токена:
// SHA-256 поверх байтов строки, base64url без паддинга.
// Используется как ключ поиска в хранилище; исходный токен по хэшу
// восстановить нельзя, поэтому БД хранит только хэши.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
