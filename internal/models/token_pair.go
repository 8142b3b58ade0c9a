package models

import "time"

// TokenPair — пара токенов, выдаваемая при аутентификации/обновлении.
//
// Описание:
//   - AccessToken — короткоживущий подписанный JWT для доступа к API;
//   - RefreshToken — долгоживущий подписанный JWT, одноразовый: предъявляется
//     только операции refresh и заменяется новой парой (ротация);
//   - AccessExpiresAt — момент истечения access-токена (UTC).
//
// Это единственное место в системе, где «сырые» токены существуют вне клиента;
// хранилище видит только их хэши.
type TokenPair struct {
	// AccessToken — JWT для авторизации запросов.
	AccessToken string
	// RefreshToken — JWT для обновления пары.
	RefreshToken string
	// AccessExpiresAt — время истечения действия access-токена (UTC).
	AccessExpiresAt time.Time
}
