package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	"github.com/Freeeeeet/sessions_bot/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, telegram_id, username, first_name, last_name, language_code, created_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Upsert создаёт пользователя или обновляет его профиль по telegram_id
func (r *UserRepository) Upsert(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, language_code)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    language_code = EXCLUDED.language_code
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.LanguageCode,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// GetByTelegramIDs получает пользователей по списку Telegram ID
func (r *UserRepository) GetByTelegramIDs(ctx context.Context, telegramIDs []int64) ([]*model.User, error) {
	if len(telegramIDs) == 0 {
		return []*model.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, telegramIDs)
	if err != nil {
		return nil, fmt.Errorf("get users by telegram ids: %w", err)
	}

	// Порядок полей model.User совпадает с userColumns
	users, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[model.User])
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	return users, nil
}

var _ service.UserStore = (*UserRepository)(nil)
