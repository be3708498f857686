package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Freeeeeet/sessions_bot/internal/model"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// defaultNameCacheSize размер кэша имён, если в конфиге не задан
const defaultNameCacheSize = 512

// UserStore хранилище пользователей Telegram
type UserStore interface {
	Upsert(ctx context.Context, user *model.User) error
	GetByTelegramIDs(ctx context.Context, telegramIDs []int64) ([]*model.User, error)
}

type UserService struct {
	userRepo UserStore
	names    *lru.Cache[int64, string]
	logger   *zap.Logger
}

func NewUserService(userRepo UserStore, cacheSize int, logger *zap.Logger) (*UserService, error) {
	if cacheSize <= 0 {
		cacheSize = defaultNameCacheSize
	}
	names, err := lru.New[int64, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create name cache: %w", err)
	}

	return &UserService{
		userRepo: userRepo,
		names:    names,
		logger:   logger,
	}, nil
}

// RegisterUser регистрирует или обновляет пользователя и возвращает его
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (*model.User, error) {
	user := &model.User{
		TelegramID:   telegramID,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		LanguageCode: languageCode,
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	// Имя могло поменяться, обновляем кэш сразу
	if name := user.DisplayName(); name != "" {
		s.names.Add(telegramID, name)
	}

	s.logger.Debug("User registered",
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
	)

	return user, nil
}

// ResolveActor возвращает стабильный идентификатор участника
func (s *UserService) ResolveActor(ctx context.Context, telegramID int64, username, firstName, lastName, languageCode string) (int64, error) {
	user, err := s.RegisterUser(ctx, telegramID, username, firstName, lastName, languageCode)
	if err != nil {
		return 0, err
	}
	return user.TelegramID, nil
}

// DisplayNames возвращает имена участников. Неизвестные получают id в виде строки.
func (s *UserService) DisplayNames(ctx context.Context, telegramIDs []int64) (map[int64]string, error) {
	result := make(map[int64]string, len(telegramIDs))

	var missing []int64
	for _, id := range telegramIDs {
		if name, ok := s.names.Get(id); ok {
			result[id] = name
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		users, err := s.userRepo.GetByTelegramIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("get users: %w", err)
		}
		for _, user := range users {
			name := user.DisplayName()
			if name == "" {
				continue
			}
			s.names.Add(user.TelegramID, name)
			result[user.TelegramID] = name
		}
	}

	for _, id := range telegramIDs {
		if _, ok := result[id]; !ok {
			result[id] = strconv.FormatInt(id, 10)
		}
	}

	return result, nil
}
