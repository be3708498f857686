package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Имена частичных уникальных индексов из миграции 00002
const (
	constraintSlotRole     = "sessions_slot_role_key"
	constraintSlotClaimant = "sessions_slot_claimant_key"
)

const sessionColumns = `id, time_label, starts_at, status, claimed_by, role, created_at`

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create создаёт запись. Нарушение уникальности роли или участника
// возвращается как service.ErrRoleTaken / service.ErrAlreadyHolding
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	query := `
		INSERT INTO sessions (id, time_label, starts_at, status, claimed_by, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		session.ID,
		session.TimeLabel,
		session.StartsAt.UTC(),
		session.Status,
		session.ClaimedBy,
		session.Role,
	).Scan(&session.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.ConstraintName {
			case constraintSlotRole:
				return service.ErrRoleTaken
			case constraintSlotClaimant:
				return service.ErrAlreadyHolding
			}
		}
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	session, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return session, nil
}

// ListBetween получает записи с началом в [from, to)
func (r *SessionRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE starts_at >= $1 AND starts_at < $2
		ORDER BY starts_at, created_at, id
	`

	return r.list(ctx, "list sessions", query, from.UTC(), to.UTC())
}

// ListClaimed получает занятые роли слота
func (r *SessionRepository) ListClaimed(ctx context.Context, key model.SlotKey) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE time_label = $1 AND starts_at = $2 AND status = 'claimed'
		ORDER BY created_at, id
	`

	return r.list(ctx, "list claimed sessions", query, key.TimeLabel, key.StartsAt.UTC())
}

// FindClaim ищет занятую роль в слоте
func (r *SessionRepository) FindClaim(ctx context.Context, key model.SlotKey, role model.Role) (*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE time_label = $1 AND starts_at = $2 AND status = 'claimed' AND role = $3
		LIMIT 1
	`

	session, err := scanSession(r.pool.QueryRow(ctx, query, key.TimeLabel, key.StartsAt.UTC(), role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find claim: %w", err)
	}

	return session, nil
}

// ListClaimedBy получает роли участника в диапазоне времени
func (r *SessionRepository) ListClaimedBy(ctx context.Context, claimant int64, from, to time.Time) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE claimed_by = $1 AND status = 'claimed'
		  AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at
	`

	return r.list(ctx, "list sessions by claimant", query, claimant, from.UTC(), to.UTC())
}

// Release освобождает роль: запись становится available
func (r *SessionRepository) Release(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE sessions
		SET status = 'available', claimed_by = NULL, role = NULL
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("release session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrSlotNotFound
	}

	return nil
}

// DeleteByIDs удаляет записи и возвращает число удалённых
func (r *SessionRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}

	return result.RowsAffected(), nil
}

func (r *SessionRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Session, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var session model.Session
	err := row.Scan(
		&session.ID,
		&session.TimeLabel,
		&session.StartsAt,
		&session.Status,
		&session.ClaimedBy,
		&session.Role,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	session.StartsAt = session.StartsAt.UTC()
	return &session, nil
}

var _ service.SessionStore = (*SessionRepository)(nil)
