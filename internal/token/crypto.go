// token реализует криптографический слой работы с токенами:
// подпись/разбор компактных JWT (HS256) и необратимое хэширование
// «сырых» токенов для ключей поиска в хранилище.
//
// Пакет намеренно не знает про отзыв токенов: Parse проверяет только
// формат, подпись, издателя/аудиторию и срок действия. Сверку с
// хранилищем выполняет слой service — это позволяет тестировать
// криптографию изолированно и без БД.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"application-auth/internal/roles"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalid — токен некорректен: формат, подпись, алгоритм,
	// издатель/аудитория или содержимое клеймов.
	ErrInvalid = errors.New("invalid token")

	// ErrExpired — срок действия токена истёк.
	ErrExpired = errors.New("token expired")
)

// Claims — разобранные клеймы токена после успешной проверки.
type Claims struct {
	// UserID — идентификатор владельца.
	UserID int64
	// Roles — роли владельца на момент выпуска.
	Roles roles.Set
	// IsRefresh — различает access- и refresh-токены.
	IsRefresh bool
	// IssuedAt, ExpiresAt — границы действия (UTC).
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// wireClaims — представление клеймов в JWT.
// Имя клейма isRefresh фиксировано: по нему валидатор отличает
// refresh-токен, предъявленный как bearer.
type wireClaims struct {
	UserID    string   `json:"uid"`
	Roles     []string `json:"roles"`
	IsRefresh bool     `json:"isRefresh"`
	jwt.RegisteredClaims
}

// Crypto подписывает и разбирает токены симметричным ключом процесса.
// Значения задаются один раз при старте и далее не меняются; экземпляр
// безопасен для конкурентного использования.
type Crypto struct {
	secret   []byte
	issuer   string
	audience []string
}

// NewCrypto создаёт Crypto. Пустой secret — фатальная ошибка конфигурации,
// она должна быть обнаружена на старте, а не на первом запросе.
func NewCrypto(secret, issuer string, audience []string) (*Crypto, error) {
	const op = "token.NewCrypto"

	if secret == "" {
		return nil, fmt.Errorf("%s: empty signing secret", op)
	}

	return &Crypto{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}, nil
}

// Sign выпускает подписанный токен с заданным сроком действия.
func (c *Crypto) Sign(userID int64, rs roles.Set, isRefresh bool, now time.Time, ttl time.Duration) (string, error) {
	const op = "token.Sign"

	uid := strconv.FormatInt(userID, 10)
	claims := wireClaims{
		UserID:    uid,
		Roles:     rs.Names(),
		IsRefresh: isRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.issuer,
			Subject:   uid,
			Audience:  jwt.ClaimStrings(c.audience),
			// jti делает токен уникальным даже при совпадении остальных
			// клеймов (iat имеет секундную гранулярность): хэши активных
			// токенов в хранилище уникальны.
			ID: uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Parse проверяет подпись, издателя/аудиторию и срок действия токена и
// возвращает клеймы. Не обращается к хранилищу.
func (c *Crypto) Parse(raw string) (*Claims, error) {
	const op = "token.Parse"

	parsed, err := jwt.ParseWithClaims(raw, &wireClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalid)
			}

			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience...),
		jwt.WithIssuedAt(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalid)
	}

	wire, ok := parsed.Claims.(*wireClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalid)
	}

	uid, err := strconv.ParseInt(wire.UserID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalid)
	}

	rs, err := roles.ParseSet(wire.Roles)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalid)
	}

	claims := &Claims{
		UserID:    uid,
		Roles:     rs,
		IsRefresh: wire.IsRefresh,
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time.UTC()
	}
	if wire.ExpiresAt != nil {
		claims.ExpiresAt = wire.ExpiresAt.Time.UTC()
	}

	return claims, nil
}
