package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DisplayPointerRepository хранит указатель в таблице из одной строки
type DisplayPointerRepository struct {
	pool *pgxpool.Pool
}

func NewDisplayPointerRepository(pool *pgxpool.Pool) *DisplayPointerRepository {
	return &DisplayPointerRepository{pool: pool}
}

// Get получает указатель, nil если расписание ещё не публиковалось
func (r *DisplayPointerRepository) Get(ctx context.Context) (*model.DisplayPointer, error) {
	query := `SELECT message_id, chat_id, updated_at FROM display_pointer WHERE singleton`

	var pointer model.DisplayPointer
	err := r.pool.QueryRow(ctx, query).Scan(&pointer.ArtifactID, &pointer.ContainerID, &pointer.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get display pointer: %w", err)
	}

	return &pointer, nil
}

// Save перезаписывает указатель
func (r *DisplayPointerRepository) Save(ctx context.Context, pointer model.DisplayPointer) error {
	query := `
		INSERT INTO display_pointer (singleton, message_id, chat_id, updated_at)
		VALUES (TRUE, $1, $2, NOW())
		ON CONFLICT (singleton) DO UPDATE
		SET message_id = EXCLUDED.message_id,
		    chat_id = EXCLUDED.chat_id,
		    updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, pointer.ArtifactID, pointer.ContainerID); err != nil {
		return fmt.Errorf("save display pointer: %w", err)
	}

	return nil
}

var _ service.PointerStore = (*DisplayPointerRepository)(nil)
