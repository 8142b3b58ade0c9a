// roles задаёт закрытое перечисление ролей пользователей и операции над
// наборами ролей. Бизнес-логика не сравнивает роли как произвольные строки:
// любое внешнее значение сначала проходит через Parse.
package roles

import (
	"errors"
	"fmt"
	"sort"
)

// Role — роль пользователя в системе.
type Role uint8

const (
	// User — базовая роль; обязательна для обычного входа.
	User Role = iota + 1
	// Admin — административная роль.
	Admin
	// SuperAdmin — расширенная административная роль.
	SuperAdmin
)

// ErrUnknownRole — строка не соответствует ни одной известной роли.
var ErrUnknownRole = errors.New("unknown role")

var names = map[Role]string{
	User:       "User",
	Admin:      "Admin",
	SuperAdmin: "SuperAdmin",
}

var byName = map[string]Role{
	"User":       User,
	"Admin":      Admin,
	"SuperAdmin": SuperAdmin,
}

// String возвращает каноническое имя роли.
func (r Role) String() string {
	if s, ok := names[r]; ok {
		return s
	}

	return fmt.Sprintf("Role(%d)", uint8(r))
}

// Valid сообщает, что роль принадлежит перечислению.
func (r Role) Valid() bool {
	_, ok := names[r]
	return ok
}

// Parse преобразует строковое имя в Role.
func Parse(s string) (Role, error) {
	const op = "roles.Parse"

	if r, ok := byName[s]; ok {
		return r, nil
	}

	return 0, fmt.Errorf("%s: %q: %w", op, s, ErrUnknownRole)
}

// Set — набор ролей пользователя.
type Set map[Role]struct{}

// NewSet собирает набор из перечисленных ролей.
func NewSet(rr ...Role) Set {
	s := make(Set, len(rr))
	for _, r := range rr {
		if r.Valid() {
			s[r] = struct{}{}
		}
	}

	return s
}

// ParseSet преобразует список строковых имён в Set.
// Неизвестное имя — ошибка: молчаливое отбрасывание скрывало бы опечатки.
func ParseSet(ss []string) (Set, error) {
	const op = "roles.ParseSet"

	set := make(Set, len(ss))
	for _, s := range ss {
		r, err := Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		set[r] = struct{}{}
	}

	return set, nil
}

// Has сообщает, содержит ли набор роль r.
func (s Set) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Intersects сообщает, есть ли у наборов хотя бы одна общая роль.
func (s Set) Intersects(other Set) bool {
	for r := range s {
		if other.Has(r) {
			return true
		}
	}

	return false
}

// HasAny сообщает, содержит ли набор хотя бы одну из перечисленных ролей.
func (s Set) HasAny(rr ...Role) bool {
	for _, r := range rr {
		if s.Has(r) {
			return true
		}
	}

	return false
}

// Names возвращает отсортированный список канонических имён ролей набора.
// Порядок детерминирован — удобно для клеймов токена и логов.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, r.String())
	}
	sort.Strings(out)

	return out
}
