package models

import "application-auth/internal/roles"

// Principal — результат успешной проверки access-токена:
// субъект запроса для слоя авторизации.
type Principal struct {
	UserID int64
	Roles  roles.Set
}
