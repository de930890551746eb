package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pet-offers-bot/bot"
	"pet-offers-bot/classifier"
	"pet-offers-bot/config"
	"pet-offers-bot/rotation"
	"pet-offers-bot/runner"
	"pet-offers-bot/scheduler"
	"pet-offers-bot/scraper"
	"pet-offers-bot/selector"
	"pet-offers-bot/server"
	"pet-offers-bot/shopee"
	"pet-offers-bot/storage"
	"pet-offers-bot/telegram"
)

var version = "dev"

func main() {
	// Load configuration first so the log level applies from the start
	configPath := config.GetConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).
			Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)
	slog.Info("starting pet offers bot", "version", version, "config", configPath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		slog.Error("bot stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("bot stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Initialize database
	dsn := cfg.DBPath
	if cfg.StoreDriver == "postgres" {
		dsn = cfg.DatabaseURL
	}
	store, err := storage.Open(ctx, cfg.StoreDriver, dsn)
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Info("database initialized", "driver", cfg.StoreDriver)

	var rotationKV rotation.KV = store
	if cfg.RedisURL != "" {
		rdb, err := storage.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		rotationKV = rdb
		slog.Info("rotation state kept in redis")
	}

	// Initialize Telegram bot
	tgBot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return err
	}
	slog.Info("telegram bot initialized", "username", tgBot.Self.UserName)

	catalog := shopee.NewClient(cfg.ShopeeAppID, cfg.ShopeeSecret,
		shopee.WithEndpoint(cfg.ShopeeEndpoint),
		shopee.WithTimeout(cfg.FetchTimeout()),
		shopee.WithRateLimit(cfg.ShopeeRequestsPerSecond, 1),
	)

	publisher := telegram.NewPublisher(tgBot,
		bot.Destination{Configured: cfg.ChatID, Store: store},
		telegram.WithPhotos(cfg.SendPhoto),
	)

	offerRunner := runner.NewRunner(&shopeeSource{catalog: catalog}, store, rotationKV, publisher,
		runner.WithCategories(cfg.Categories),
		runner.WithSettingsUser(cfg.SettingsUser),
		runner.WithBlocklist(classifier.New(cfg.BlockedKeywords)),
		runner.WithTitleLookup(scraper.NewScraper(scraper.WithTimeout(cfg.FetchTimeout()))),
	)

	scheduledRun := func(ctx context.Context) {
		res, err := offerRunner.Run(ctx)
		if err != nil {
			slog.Error("scheduled run failed", "error", err)
			return
		}
		slog.Info("scheduled run finished", "run_id", res.RunID, "found", res.Found)
	}

	handlerOpts := []bot.Option{
		bot.WithAdmins(cfg.AdminUserIDs),
		bot.WithRotationStore(rotationKV),
		bot.WithSettingsUser(cfg.SettingsUser),
	}
	if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
		handlerOpts = append(handlerOpts, bot.WithLocation(loc))
	}

	if cfg.ScheduleEnabled() {
		sched, err := scheduler.NewScheduler(cfg.Timezone, scheduler.WithJobTimeout(cfg.RunTimeout()))
		if err != nil {
			return err
		}

		spec := cfg.Schedule
		if stored, err := store.GetSetting(ctx, bot.ScheduleKey); err == nil && stored != "" {
			spec = stored
		}
		if err := sched.Schedule(spec, scheduledRun); err != nil {
			slog.Warn("stored schedule rejected, using configured one", "schedule", spec, "error", err)
			spec = cfg.Schedule
			if err := sched.Schedule(spec, scheduledRun); err != nil {
				return err
			}
		}
		sched.Start()
		defer sched.Stop()
		slog.Info("runs scheduled", "schedule", sched.Spec(), "timezone", cfg.Timezone, "next", sched.Next())

		handlerOpts = append(handlerOpts, bot.WithScheduler(sched, scheduledRun))
	}

	if cfg.HTTPEnabled() {
		api := server.New(offerRunner, catalog,
			server.WithVersion(version),
			server.WithRunTimeout(cfg.RunTimeout()),
		)
		srv := &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      api.Handler(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: cfg.RunTimeout() + 30*time.Second,
		}
		go func() {
			slog.Info("http server listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("http server shutdown", "error", err)
			}
		}()
	}

	if cfg.Commands() {
		handler := bot.NewCommandHandler(&telegramSender{api: tgBot}, store, offerRunner, handlerOpts...)
		slog.Info("starting bot polling")
		var wg sync.WaitGroup
		poll(ctx, tgBot, handler, &wg)
		wg.Wait()
	} else {
		<-ctx.Done()
	}

	return nil
}

// poll reads updates until ctx is done. Each command runs on its own
// goroutine so a long /send does not stall polling.
func poll(ctx context.Context, api *tgbotapi.BotAPI, handler *bot.CommandHandler, wg *sync.WaitGroup) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := api.GetUpdatesChan(u)
	defer api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := update.Message
			if msg == nil || msg.Text == "" || msg.From == nil {
				continue
			}
			text := strings.TrimSpace(msg.Text)
			slog.Info("received message", "chat_id", msg.Chat.ID, "user_id", msg.From.ID, "text", text)

			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := handler.Handle(ctx, msg.Chat.ID, msg.From.ID, text); err != nil {
					slog.Warn("command failed", "chat_id", msg.Chat.ID, "error", err)
				}
			}()
		}
	}
}

// Adapter types to bridge between the catalog client and the engine

type offerCatalog interface {
	FetchOffers(ctx context.Context, q shopee.Query) (*shopee.Page, error)
}

type shopeeSource struct {
	catalog offerCatalog
}

func (s *shopeeSource) FetchOffers(ctx context.Context, categoryID int64, sortType, page, pageSize int) (*selector.Page, error) {
	res, err := s.catalog.FetchOffers(ctx, shopee.Query{
		CategoryID: categoryID,
		SortType:   sortType,
		IsAMSOffer: true,
		Limit:      pageSize,
		Page:       page,
	})
	if err != nil {
		return nil, err
	}

	out := &selector.Page{
		Offers:      make([]selector.Offer, 0, len(res.Offers)),
		HasNextPage: res.PageInfo.HasNextPage,
	}
	for _, o := range res.Offers {
		out.Offers = append(out.Offers, selector.Offer{
			ID:             string(o.ItemID),
			Name:           o.ProductName,
			PriceMin:       float64(o.PriceMin),
			PriceMax:       float64(o.PriceMax),
			DiscountRate:   o.PriceDiscountRate,
			CommissionRate: float64(o.CommissionRate),
			Link:           o.OfferLink,
			ImageURL:       o.ImageURL,
			CategoryIDs:    o.ProductCatIDs,
		})
	}
	return out, nil
}

type telegramSender struct {
	api telegram.Sender
}

func (t *telegramSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	if _, err := t.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		slog.Warn("failed to send message", "chat_id", chatID, "error", err)
		return err
	}
	return nil
}
