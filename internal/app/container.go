// Package app assembles the dependency graph.
package app

import (
	"context"
	"os"
	"time"

	"github.com/doeshing/aish/internal/domain"
	"github.com/doeshing/aish/internal/infrastructure/ai"
	"github.com/doeshing/aish/internal/infrastructure/audit"
	"github.com/doeshing/aish/internal/infrastructure/config"
	"github.com/doeshing/aish/internal/infrastructure/executor"
	"github.com/doeshing/aish/internal/infrastructure/history"
	"github.com/doeshing/aish/internal/infrastructure/security"
	"github.com/doeshing/aish/internal/infrastructure/training"
	"github.com/doeshing/aish/internal/pkg/logger"
	"github.com/doeshing/aish/internal/ports"
	"github.com/doeshing/aish/internal/services"
)

// Options carries process level switches into the container build.
type Options struct {
	ConfigPath     string
	Verbose        bool
	NoConfirmation bool
	ModelOverride  string
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config       domain.Config
	ConfigLoader *config.FileLoader
	Logger       ports.Logger

	Security ports.SecurityService
	Audit    *audit.Logger
	Training *training.Store
	History  ports.HistoryRepository

	ProviderFactory ports.ProviderFactory
	Gate            *services.Gate
}

// BuildContainer constructs the dependency graph. The gate comes back
// without a prompter; the CLI attaches one before first use.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if opts.ModelOverride != "" {
		cfg.Preferences.DefaultModel = opts.ModelOverride
	}

	log := logger.NewStd(opts.Verbose)
	checker := security.NewChecker(cfg.Security.DangerousCommands)
	auditLog := audit.NewLogger(cfg.Logging.AuditFile, cfg.Logging.Enabled())
	trainingStore := training.NewStore(cfg.Training.DatasetFile, cfg.Training.Logging(), os.Stdout)

	var historyStore ports.HistoryRepository
	if cfg.History.On() {
		historyStore = history.NewSQLiteStore(cfg.History.File)
	}

	requireConfirmation := cfg.Security.ConfirmationRequired() && !opts.NoConfirmation

	gate := &services.Gate{
		Security:            checker,
		Runner:              executor.NewStreamRunner(cfg.Preferences.Shell),
		Audit:               auditLog,
		Feedback:            trainingStore,
		History:             historyStore,
		Logger:              log,
		RequireConfirmation: requireConfirmation,
	}

	return &Container{
		Config:          cfg,
		ConfigLoader:    cfgLoader,
		Logger:          log,
		Security:        checker,
		Audit:           auditLog,
		Training:        trainingStore,
		History:         historyStore,
		ProviderFactory: ai.NewFactory(time.Duration(cfg.Preferences.TimeoutSeconds) * time.Second),
		Gate:            gate,
	}, nil
}

// Provider resolves the configured default model into a provider instance.
func (c *Container) Provider() (ports.Provider, error) {
	model, _ := c.Config.DefaultModel()
	return c.ProviderFactory.ForModel(model)
}
