// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// Главный администратор — всегда в реестре, удалить его нельзя
	AdminChatID int64 `envconfig:"ADMIN_CHAT_ID" required:"true"`
	// Группа, куда приходят заявки на пополнение и уведомления CryptoBot
	DepositGroupID int64 `envconfig:"DEPOSIT_GROUP_ID" required:"true"`
	// Группа, куда приходят заказы на ручное подтверждение
	OrdersGroupID int64 `envconfig:"ORDERS_GROUP_ID" required:"true"`
	// Доверенный отправитель уведомлений о платежах (бот CryptoBot)
	CryptoBotID int64 `envconfig:"CRYPTOBOT_ID" required:"true"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"shop_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Внешние API ---
	ActivatorAPIURL   string `envconfig:"ACTIVATOR_API_URL" default:""`
	ActivatorUsername string `envconfig:"ACTIVATOR_USERNAME" default:""`
	ActivatorToken    string `envconfig:"ACTIVATOR_TOKEN" default:""`
	FragmentAPIURL    string `envconfig:"FRAGMENT_API_URL" default:""`
	FragmentToken     string `envconfig:"FRAGMENT_TOKEN" default:""`
	BybitAPIURL       string `envconfig:"BYBIT_API_URL" default:""`
	BybitAPIKey       string `envconfig:"BYBIT_API_KEY" default:""`
	BybitSecret       string `envconfig:"BYBIT_SECRET" default:""`

	// --- Депозиты ---
	// Сколько живут неподтверждённые заявки на пополнение до сметания кроном
	PendingTTL time.Duration `envconfig:"PENDING_TTL" default:"72h"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.AdminChatID == 0 {
		return fmt.Errorf("ADMIN_CHAT_ID не задан или равен 0")
	}
	if c.DepositGroupID == 0 || c.OrdersGroupID == 0 {
		return fmt.Errorf("DEPOSIT_GROUP_ID и ORDERS_GROUP_ID должны быть заданы")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.PendingTTL <= 0 {
		return fmt.Errorf("PENDING_TTL должен быть > 0")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
