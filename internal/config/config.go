package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Freeeeeet/sessions_bot/internal/clock"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	Environment    string `env:"ENV" envDefault:"development" validate:"oneof=development production test"`
	LogLevel       string `env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Store          string `env:"STORE" envDefault:"postgres" validate:"oneof=postgres memory"`
	DBDSN          string `env:"DB_DSN" validate:"required_if=Store postgres,required_if=PointerBackend postgres"`
	MigrationsDir  string `env:"MIGRATIONS_DIR"`
	PointerBackend string `env:"POINTER_BACKEND" envDefault:"postgres" validate:"oneof=postgres redis memory"`
	RedisAddr      string `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required_if=PointerBackend redis"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	HTTPEnabled    bool   `env:"HTTP_ENABLED" envDefault:"true"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8080" validate:"required_if=HTTPEnabled true"`
	NameCacheSize  int    `env:"NAME_CACHE_SIZE" envDefault:"512" validate:"gt=0"`

	Sessions Sessions `envPrefix:"SESSIONS_"`

	// DotEnvLoaded true если переменные подгружены из .env
	DotEnvLoaded bool
}

// Sessions настройки недельной сетки тренировок
type Sessions struct {
	Timezone    string   `env:"TIMEZONE" envDefault:"Europe/Athens" validate:"required,timezone"`
	Times       []string `env:"TIMES" envDefault:"10AM,1PM,4PM,7PM,10PM" envSeparator:"," validate:"min=1,dive,timelabel"`
	LabelSuffix string   `env:"LABEL_SUFFIX" envDefault:"EET"`
	WeekEnd     string   `env:"WEEK_END" envDefault:"friday" validate:"weekday"`
	AdminIDs    []int64  `env:"ADMIN_IDS" envSeparator:","`
	RefreshCron string   `env:"REFRESH_CRON" envDefault:"5 * * * *" validate:"required,cron"`
}

// Load читает .env (если есть) и переменные окружения, затем проверяет значения
func Load() (*Config, error) {
	// .env необязателен, переменные могут прийти из окружения
	loaded := godotenv.Load(".env") == nil

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, fmt.Errorf("parse config: %w", aggErr.Errors[0])
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.DotEnvLoaded = loaded

	for i, t := range cfg.Sessions.Times {
		cfg.Sessions.Times[i] = strings.ToUpper(strings.TrimSpace(t))
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет конфиг. Некорректные метки времени останавливают запуск
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("timelabel", func(fl validator.FieldLevel) bool {
		_, err := clock.ParseLabel(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := ParseWeekday(fl.Field().String())
		return err == nil
	})

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if err := clock.ValidateLabels(cfg.Sessions.Times); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	return nil
}

// RequireBot проверяет, что задано всё необходимое для запуска бота
func (c *Config) RequireBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required but not set")
	}
	return nil
}

// Location возвращает опорный часовой пояс
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Sessions.Timezone)
}

// WeekEnd возвращает последний день недельного окна
func (c *Config) WeekEnd() time.Weekday {
	day, _ := ParseWeekday(c.Sessions.WeekEnd)
	return day
}

// IsAdmin проверяет право публиковать расписание. Пустой список разрешает всем
func (c *Config) IsAdmin(telegramID int64) bool {
	return len(c.Sessions.AdminIDs) == 0 || slices.Contains(c.Sessions.AdminIDs, telegramID)
}

// ParseWeekday разбирает название дня недели: "friday", "Fri"
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty weekday")
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
