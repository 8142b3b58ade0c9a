package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"application-auth/internal/models"
	"application-auth/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const tokenRecordColumns = `id, user_id, access_token_hash, refresh_token_hash, issued_at, access_expires_at, refresh_expires_at, is_active`

// SaveTokenRecord сохраняет новую запись о выпущенной паре токенов.
func (s *Storage) SaveTokenRecord(ctx context.Context, rec *models.TokenRecord) error {
	const op = "storage.postgres.SaveTokenRecord"

	query := `
		INSERT INTO token_records(` + tokenRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.AccessTokenHash,
		rec.RefreshTokenHash,
		rec.IssuedAt,
		rec.AccessExpiresAt,
		rec.RefreshExpiresAt,
		rec.IsActive,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ActiveByAccessHash находит активную запись по хэшу access-токена.
// Запрос покрыт частичным уникальным индексом по (access_token_hash) WHERE is_active.
func (s *Storage) ActiveByAccessHash(ctx context.Context, hash string) (*models.TokenRecord, error) {
	const op = "storage.postgres.ActiveByAccessHash"

	query := `
		SELECT ` + tokenRecordColumns + `
		FROM token_records
		WHERE access_token_hash = $1 AND is_active
	`

	rec, err := scanTokenRecord(s.db.QueryRow(ctx, query, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

// ActiveByRefreshHash находит активную запись по хэшу refresh-токена.
// Просроченная по refresh_expires_at запись не возвращается даже при
// is_active = TRUE (ленивое истечение).
func (s *Storage) ActiveByRefreshHash(ctx context.Context, hash string, now time.Time) (*models.TokenRecord, error) {
	const op = "storage.postgres.ActiveByRefreshHash"

	query := `
		SELECT ` + tokenRecordColumns + `
		FROM token_records
		WHERE refresh_token_hash = $1 AND is_active AND refresh_expires_at > $2
	`

	rec, err := scanTokenRecord(s.db.QueryRow(ctx, query, hash, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

// Deactivate переводит запись в is_active = FALSE.
// Возвращает:
//
//	(true, nil)  — запись была активна и деактивирована сейчас;
//	(false, nil) — запись существует, но уже была неактивна;
//	(false, ErrNotFound) — запись не найдена.
func (s *Storage) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	const op = "storage.postgres.Deactivate"

	const upd = `
		UPDATE token_records
		SET is_active = FALSE
		WHERE id = $1 AND is_active
		RETURNING user_id
	`

	var userID int64
	err := s.db.QueryRow(ctx, upd, id).Scan(&userID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	const sel = `
		SELECT is_active
		FROM token_records
		WHERE id = $1
	`

	var isActive bool
	err = s.db.QueryRow(ctx, sel, id).Scan(&isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return false, nil
}

// DeactivateAllByUser деактивирует все записи пользователя.
// Отсутствие активных записей не ошибка: logout идемпотентен.
func (s *Storage) DeactivateAllByUser(ctx context.Context, userID int64) error {
	const op = "storage.postgres.DeactivateAllByUser"

	query := `
		UPDATE token_records
		SET is_active = FALSE
		WHERE user_id = $1 AND is_active
	`

	if _, err := s.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RotateTokenRecord атомарно деактивирует старую запись и вставляет новую.
// Деактивация требует is_active = TRUE: из двух конкурентных ротаций одного
// refresh-токена зафиксируется ровно одна, вторая получит ErrRevoked.
func (s *Storage) RotateTokenRecord(ctx context.Context, oldID uuid.UUID, rec *models.TokenRecord) error {
	const op = "storage.postgres.RotateTokenRecord"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const upd = `
		UPDATE token_records
		SET is_active = FALSE
		WHERE id = $1 AND is_active
		RETURNING user_id
	`

	var userID int64
	err = tx.QueryRow(ctx, upd, oldID).Scan(&userID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, err)
		}

		const sel = `SELECT is_active FROM token_records WHERE id = $1`

		var isActive bool
		if err := tx.QueryRow(ctx, sel, oldID).Scan(&isActive); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
			}

			return fmt.Errorf("%s: %w", op, err)
		}

		return fmt.Errorf("%s: %w", op, storage.ErrRevoked)
	}

	const ins = `
		INSERT INTO token_records(` + tokenRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.Exec(ctx, ins,
		rec.ID,
		rec.UserID,
		rec.AccessTokenHash,
		rec.RefreshTokenHash,
		rec.IssuedAt,
		rec.AccessExpiresAt,
		rec.RefreshExpiresAt,
		rec.IsActive,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteExpired удаляет записи, чей refresh-срок истёк.
func (s *Storage) DeleteExpired(ctx context.Context, now time.Time) error {
	const op = "storage.postgres.DeleteExpired"

	query := `
		DELETE FROM token_records
		WHERE refresh_expires_at <= $1
	`

	if _, err := s.db.Exec(ctx, query, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func scanTokenRecord(row pgx.Row) (*models.TokenRecord, error) {
	var rec models.TokenRecord

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.AccessTokenHash,
		&rec.RefreshTokenHash,
		&rec.IssuedAt,
		&rec.AccessExpiresAt,
		&rec.RefreshExpiresAt,
		&rec.IsActive,
	)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
