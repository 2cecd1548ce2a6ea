// Package wire provides dependency injection for the foreman application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/example/foreman/internal/adapters/notify"
	"github.com/example/foreman/internal/adapters/sqlite"
	tmuxadapter "github.com/example/foreman/internal/adapters/tmux"
	"github.com/example/foreman/internal/app"
	"github.com/example/foreman/internal/config"
	"github.com/example/foreman/internal/db"
	"github.com/example/foreman/internal/gateway"
	"github.com/example/foreman/internal/ports/primary"
	"github.com/example/foreman/internal/ports/secondary"
)

var (
	cfg                 *config.Config
	logger              *slog.Logger
	organizationService primary.OrganizationService
	teamService         primary.TeamService
	sprintService       primary.SprintService
	workItemService     primary.WorkItemService
	delegationService   primary.DelegationService
	reviewService       primary.ReviewService
	escalationService   primary.EscalationService
	workItemRepo        secondary.WorkItemRepository
	escalationRepo      secondary.EscalationRepository
	once                sync.Once
)

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the shared structured logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// OrganizationService returns the singleton OrganizationService instance.
func OrganizationService() primary.OrganizationService {
	once.Do(initServices)
	return organizationService
}

// TeamService returns the singleton TeamService instance.
func TeamService() primary.TeamService {
	once.Do(initServices)
	return teamService
}

// SprintService returns the singleton SprintService instance.
func SprintService() primary.SprintService {
	once.Do(initServices)
	return sprintService
}

// WorkItemService returns the singleton WorkItemService instance.
func WorkItemService() primary.WorkItemService {
	once.Do(initServices)
	return workItemService
}

// DelegationService returns the singleton DelegationService instance.
func DelegationService() primary.DelegationService {
	once.Do(initServices)
	return delegationService
}

// ReviewService returns the singleton ReviewService instance.
func ReviewService() primary.ReviewService {
	once.Do(initServices)
	return reviewService
}

// EscalationService returns the singleton EscalationService instance.
func EscalationService() primary.EscalationService {
	once.Do(initServices)
	return escalationService
}

// Monitor builds the escalation monitor from the configured intervals.
// Each call creates a fresh monitor; callers own Start/Stop.
func Monitor() *app.Monitor {
	once.Do(initServices)
	return app.NewMonitor(
		workItemRepo,
		escalationRepo,
		escalationService,
		time.Duration(cfg.PollIntervalSeconds)*time.Second,
		time.Duration(cfg.EscalationTimeoutMinutes)*time.Minute,
		logger,
	)
}

// GitWebhook builds the webhook handler from the configured secret.
func GitWebhook() *gateway.GitWebhook {
	once.Do(initServices)
	return gateway.NewGitWebhook(workItemService, cfg.GitWebhookSecret, logger)
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

	configPath, err := config.Path()
	if err != nil {
		log.Fatalf("failed to locate config: %v", err)
	}
	cfg, err = config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = db.DefaultPath()
		if err != nil {
			log.Fatalf("failed to resolve database path: %v", err)
		}
	}
	database, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Repository adapters (secondary ports)
	orgRepo := sqlite.NewOrganizationRepository(database)
	teamRepo := sqlite.NewTeamRepository(database)
	sprintRepo := sqlite.NewSprintRepository(database)
	workItemRepo = sqlite.NewWorkItemRepository(database)
	escalationRepo = sqlite.NewEscalationRepository(database)

	// Escalations go to a tmux pane when one is configured, else the log.
	var notifier secondary.EscalationNotifier
	if cfg.NotifyTmuxTarget != "" {
		tm, err := tmuxadapter.NewNotifier(cfg.NotifyTmuxTarget)
		if err != nil {
			logger.Warn("tmux unavailable, falling back to log notifier", "err", err)
			notifier = notify.NewLogNotifier(logger)
		} else {
			notifier = tm
		}
	} else {
		notifier = notify.NewLogNotifier(logger)
	}

	// Services (primary port implementations)
	organizationService = app.NewOrganizationService(orgRepo)
	teamService = app.NewTeamService(teamRepo, orgRepo)
	sprintService = app.NewSprintService(sprintRepo, teamRepo, workItemRepo)
	workItemService = app.NewWorkItemService(workItemRepo)
	delegationService = app.NewDelegationService(workItemRepo)
	reviewService = app.NewReviewService(workItemRepo)
	escalationService = app.NewEscalationService(escalationRepo, sprintRepo, teamRepo, notifier, logger)
}
