package app

import (
	"context"
	"log/slog"

	"CheeseAgent/internal/config"
	"CheeseAgent/internal/fetcher"
	"CheeseAgent/internal/infrastructure/browser"
	"CheeseAgent/internal/infrastructure/images"
	"CheeseAgent/internal/infrastructure/llm"
	"CheeseAgent/internal/infrastructure/scheduler"
	"CheeseAgent/internal/infrastructure/storage"
	"CheeseAgent/internal/infrastructure/telegram"
	"CheeseAgent/internal/ports"
	"CheeseAgent/internal/scraper"
	"CheeseAgent/internal/usecase"
)

// Application wires configuration to the agent and its adapters.
type Application struct {
	cfg   config.Config
	agent *usecase.Agent
}

// New builds a runnable application instance. A discovery session that
// cannot be constructed leaves the agent without a source; the run then
// aborts after persisting its unchanged state.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	registry := fetcher.NewRegistry()
	registry.Register(browser.NewChromeFetcher(cfg.Browser, baseLogger.With("component", "fetcher.chrome")))

	var source ports.CandidateSource
	validator, err := images.NewValidator(cfg.Scraper.OutputDir, baseLogger.With("component", "validator"))
	if err != nil {
		baseLogger.Error("failed to initialize validator", "error", err)
	} else {
		session, err := scraper.NewSession(
			registry,
			cfg.Scraper.Fetcher,
			validator,
			cfg.Scraper.Categories,
			baseLogger.With("component", "scraper"),
		)
		if err != nil {
			baseLogger.Error("failed to initialize discovery session", "error", err)
		} else {
			source = session
		}
	}

	states := storage.NewFileRepository(cfg.Agent.StateFile, baseLogger.With("component", "storage"))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	var assistant ports.AssistantClient
	if cfg.Assistant.APIKey != "" {
		assistant = llm.NewAssistantClient(cfg.Assistant)
	}

	agent := usecase.NewAgent(usecase.AgentDeps{
		Source:           source,
		States:           states,
		Notifier:         notifier,
		Assistant:        assistant,
		Logger:           baseLogger.With("component", "agent"),
		DailyTarget:      cfg.Agent.DailyTarget,
		CollectionPrefix: cfg.Agent.CollectionPrefix,
	})

	return &Application{cfg: cfg, agent: agent}
}

// Run performs a single agent run.
func (a *Application) Run(ctx context.Context) error {
	return a.agent.Run(ctx)
}

// RunDaemon keeps executing runs on the configured interval until the
// context ends.
func (a *Application) RunDaemon(ctx context.Context) error {
	driver := scheduler.NewDailyScheduler(a.cfg.Scheduler.Interval())
	sched := usecase.NewScheduler(driver, a.agent)

	if err := sched.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}
