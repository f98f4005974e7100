// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, накатывает миграции, поднимает
// состояние из зеркала в память и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"ronid.ru/shop-bot/internal/bot"
	"ronid.ru/shop-bot/internal/clients"
	"ronid.ru/shop-bot/internal/config"
	"ronid.ru/shop-bot/internal/db/postgres"
	"ronid.ru/shop-bot/internal/features/admin"
	"ronid.ru/shop-bot/internal/features/catalog"
	"ronid.ru/shop-bot/internal/features/deposits"
	"ronid.ru/shop-bot/internal/features/inventory"
	"ronid.ru/shop-bot/internal/features/orders"
	"ronid.ru/shop-bot/internal/features/users"
	"ronid.ru/shop-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Репозитории ===
	userRepo := users.NewRepository(pool)
	catalogRepo := catalog.NewRepository(pool)
	inventoryRepo := inventory.NewRepository(pool)
	orderRepo := orders.NewRepository(pool)
	depositRepo := deposits.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 4. Сервисы ===
	// Авторитетное состояние живёт в памяти; из зеркала оно поднимается
	// один раз на старте. Ошибка чтения зеркала здесь фатальна — иначе
	// бот начнёт жизнь с пустыми балансами и пулами кодов.
	ledger := users.NewLedger(userRepo)
	store := catalog.NewStore(catalogRepo)
	inv := inventory.NewStore(inventoryRepo)
	journal := orders.NewJournal(orderRepo)
	desk := deposits.NewDesk(depositRepo)
	admins := admin.NewRegistry(cfg.AdminChatID, cfg.AdminPasswordHash, adminRepo)

	if err := loadState(ctx, ledger, store, inv, journal, desk, admins,
		userRepo, catalogRepo, inventoryRepo, orderRepo, depositRepo, adminRepo); err != nil {
		return nil, fmt.Errorf("ошибка загрузки состояния: %w", err)
	}

	// === 5. Внешние API ===
	activator := clients.NewActivatorClient(cfg.ActivatorAPIURL, cfg.ActivatorUsername, cfg.ActivatorToken)
	fragment := clients.NewFragmentClient(cfg.FragmentAPIURL, cfg.FragmentToken)
	bybit := clients.NewBybitClient(cfg.BybitAPIURL, cfg.BybitAPIKey, cfg.BybitSecret)

	// === 6. Оркестрация покупок и сверка переводов ===
	dispatcher := orders.NewDispatcher(ledger, inv, journal, activator, fragment)
	reconciler := deposits.NewReconciler(desk, ledger)

	// === 7. Собираем бота ===
	b := bot.New(botAPI, cfg, ledger, store, inv, journal, dispatcher, desk, reconciler, admins, bybit)

	// === 8. Планировщик задач ===
	scheduler := jobs.NewScheduler(desk, cfg.PendingTTL, cfg.DepositGroupID, b.SendMessageToUser)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// loadState поднимает состояние всех сервисов из Postgres.
func loadState(
	ctx context.Context,
	ledger *users.Ledger,
	store *catalog.Store,
	inv *inventory.Store,
	journal *orders.Journal,
	desk *deposits.Desk,
	admins *admin.Registry,
	userRepo *users.Repository,
	catalogRepo *catalog.Repository,
	inventoryRepo *inventory.Repository,
	orderRepo *orders.Repository,
	depositRepo *deposits.Repository,
	adminRepo *admin.Repository,
) error {
	allUsers, err := userRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("пользователи: %w", err)
	}
	ledger.Load(allUsers)

	codes, err := catalogRepo.LoadProducts(ctx, catalog.CategoryCodes)
	if err != nil {
		return fmt.Errorf("товары codes: %w", err)
	}
	premium, err := catalogRepo.LoadProducts(ctx, catalog.CategoryPremium)
	if err != nil {
		return fmt.Errorf("товары premium: %w", err)
	}
	promo, err := catalogRepo.LoadProducts(ctx, catalog.CategoryPromo)
	if err != nil {
		return fmt.Errorf("товары promo: %w", err)
	}
	starsPrice, err := catalogRepo.LoadStarsPrice(ctx)
	if err != nil {
		return fmt.Errorf("цена звёзд: %w", err)
	}
	store.Load(codes, premium, promo, starsPrice)

	pools, err := inventoryRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("коды: %w", err)
	}
	inv.Load(pools)

	allOrders, err := orderRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("заказы: %w", err)
	}
	journal.Load(allOrders)

	checks, err := depositRepo.LoadChecks(ctx)
	if err != nil {
		return fmt.Errorf("чеки: %w", err)
	}
	cryptoDeposits, err := depositRepo.LoadDeposits(ctx)
	if err != nil {
		return fmt.Errorf("заявки CryptoBot: %w", err)
	}
	details, err := depositRepo.LoadPaymentDetails(ctx)
	if err != nil {
		return fmt.Errorf("реквизиты: %w", err)
	}
	desk.Load(checks, cryptoDeposits, details)

	allAdmins, err := adminRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("администраторы: %w", err)
	}
	admins.Load(allAdmins)

	log.WithFields(log.Fields{
		"users":  len(allUsers),
		"orders": len(allOrders),
		"admins": len(allAdmins),
	}).Info("Состояние поднято из БД")
	return nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Users},
		{2, migration002Catalog},
		{3, migration003Codes},
		{4, migration004Orders},
		{5, migration005Deposits},
		{6, migration006Admins},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Users = `
CREATE TABLE IF NOT EXISTS users (
    user_id BIGINT PRIMARY KEY,
    balance NUMERIC(14,2) NOT NULL DEFAULT 0,
    language VARCHAR(8) NOT NULL DEFAULT 'ru',
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`

var migration002Catalog = `
CREATE TABLE IF NOT EXISTS products (
    id BIGSERIAL PRIMARY KEY,
    category VARCHAR(32) NOT NULL,
    label VARCHAR(255) NOT NULL,
    price NUMERIC(14,2) NOT NULL,
    position INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category, position);
CREATE TABLE IF NOT EXISTS stars_price (
    id INTEGER PRIMARY KEY,
    price NUMERIC(14,2) NOT NULL
);
`

var migration003Codes = `
CREATE TABLE IF NOT EXISTS codes (
    code_id VARCHAR(64) PRIMARY KEY,
    label VARCHAR(255) NOT NULL,
    code TEXT NOT NULL,
    added_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_codes_label ON codes(label, added_at);
`

var migration004Orders = `
CREATE TABLE IF NOT EXISTS orders (
    order_id VARCHAR(64) PRIMARY KEY,
    user_id BIGINT NOT NULL,
    type VARCHAR(32) NOT NULL,
    total NUMERIC(14,2) NOT NULL,
    status VARCHAR(32) NOT NULL,
    created_at TIMESTAMP NOT NULL,
    payload JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id, created_at DESC);
`

var migration005Deposits = `
CREATE TABLE IF NOT EXISTS pending_checks (
    user_id BIGINT PRIMARY KEY,
    amount NUMERIC(14,2) NOT NULL,
    payer_tag VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS cryptobot_deposits (
    user_id BIGINT PRIMARY KEY,
    payer_name VARCHAR(255) NOT NULL,
    invoice_message_id INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS payment_details (
    id INTEGER PRIMARY KEY,
    bybit TEXT NOT NULL DEFAULT '',
    cryptobot TEXT NOT NULL DEFAULT ''
);
`

var migration006Admins = `
CREATE TABLE IF NOT EXISTS admins (
    chat_id BIGINT PRIMARY KEY,
    added_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`
