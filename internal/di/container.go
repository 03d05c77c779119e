package di

import (
	"github.com/dentallab/backend/internal/handler"
	"github.com/dentallab/backend/internal/repository"
	"github.com/dentallab/backend/internal/service"
	"github.com/dentallab/backend/internal/token"
	"github.com/dentallab/backend/pkg/config"
	"github.com/dentallab/backend/pkg/database"
	"github.com/dentallab/backend/pkg/mailer"
	pkgredis "github.com/dentallab/backend/pkg/redis"
)

// Container holds all dependencies for the API
type Container struct {
	// Infrastructure
	DB     *database.PostgresDB
	Redis  *pkgredis.Client
	Issuer *token.Issuer
	Mailer mailer.Mailer

	// Repositories
	UserRepo    repository.UserRepository
	SessionRepo repository.SessionRepository
	RoleRepo    repository.RoleRepository
	CaseRepo    repository.CaseRepository
	DentistRepo repository.DentistRepository

	// Services
	AuthService service.AuthService
	CaseService service.CaseService

	// Handlers
	HealthHandler *handler.HealthHandler
	AuthHandler   *handler.AuthHandler
	CaseHandler   *handler.CaseHandler
}

// ContainerConfig contains the externally constructed pieces
type ContainerConfig struct {
	Config *config.Config
	DB     *database.PostgresDB
	Redis  *pkgredis.Client
	Mailer mailer.Mailer
}

// NewContainer wires repositories, services and handlers together
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:     cfg.DB,
		Redis:  cfg.Redis,
		Mailer: cfg.Mailer,
	}

	c.Issuer = token.NewIssuer(&token.Config{
		AccessSecret:    cfg.Config.JWT.AccessSecret,
		RefreshSecret:   cfg.Config.JWT.RefreshSecret,
		AccessTokenTTL:  cfg.Config.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.Config.JWT.RefreshTokenTTL,
		Issuer:          cfg.Config.JWT.Issuer,
		Audience:        cfg.Config.JWT.Audience,
	})

	pool := cfg.DB.Pool()
	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.SessionRepo = repository.NewPostgresSessionRepository(pool)
	c.RoleRepo = repository.NewPostgresRoleRepository(pool)
	c.CaseRepo = repository.NewPostgresCaseRepository(pool)
	c.DentistRepo = repository.NewPostgresDentistRepository(pool)

	c.AuthService = service.NewAuthService(
		c.UserRepo,
		c.SessionRepo,
		c.RoleRepo,
		c.Issuer,
		c.Mailer,
		&service.AuthServiceConfig{
			BcryptCost:      cfg.Config.Auth.BcryptCost,
			ResetTokenTTL:   cfg.Config.Auth.ResetTokenTTL,
			RevokeOnRefresh: cfg.Config.Auth.RevokeOnRefresh,
			BaseURL:         cfg.Config.SMTP.BaseURL,
		},
	)
	c.CaseService = service.NewCaseService(c.CaseRepo, c.DentistRepo)

	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis, cfg.Config.App.Version)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.CaseHandler = handler.NewCaseHandler(c.CaseService)

	return c
}
