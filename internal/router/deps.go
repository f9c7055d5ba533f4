package router

import (
	"context"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/kenfuse/kenfuse-api/config"
	app "github.com/kenfuse/kenfuse-api/internal/application"
	repo "github.com/kenfuse/kenfuse-api/internal/domain/repository"
	handlers "github.com/kenfuse/kenfuse-api/internal/interface/http"
	"github.com/kenfuse/kenfuse-api/internal/router/modules"
	"github.com/kenfuse/kenfuse-api/pkg/helpers"
)

// Repositories is the persistence the services run on.
type Repositories struct {
	Users       repo.UserRepository
	Wills       repo.WillRepository
	Memorials   repo.MemorialRepository
	Fundraisers repo.FundraiserRepository
	Payments    repo.PaymentRepository
	Vendors     repo.VendorRepository
	Stats       repo.StatsRepository
}

// Infra holds the outbound integrations. Leave a field nil (not a typed nil
// pointer) to switch the feature off.
type Infra struct {
	Redis     *redis.Client
	DB        handlers.Pinger
	Store     app.ObjectStore
	ES        *elasticsearch.Client
	Publisher app.Publisher
	Mpesa     app.MobileMoneyGateway
	Card      app.CardGateway
}

// Dependencies is the wired HTTP surface.
type Dependencies struct {
	Config *config.Config
	Logger *logrus.Logger
	Guard  modules.Guard

	Auth        *handlers.AuthHandler
	Wills       *handlers.WillHandler
	Memorials   *handlers.MemorialHandler
	Fundraisers *handlers.FundraiserHandler
	Vendors     *handlers.VendorHandler
	Payments    *handlers.PaymentHandler
	Admin       *handlers.AdminHandler
	Health      *handlers.HealthHandler
}

// Build wires services and handlers over repos and infra.
func Build(cfg *config.Config, logger *logrus.Logger, jwt *helpers.JWTManager, repos Repositories, infra Infra) *Dependencies {
	var cache redis.Cmdable
	var redisPing handlers.Pinger
	guard := modules.Guard{JWT: jwt}
	if infra.Redis != nil {
		cache = infra.Redis
		guard.Redis = infra.Redis
		redisPing = handlers.PingFunc(func(ctx context.Context) error { return infra.Redis.Ping(ctx).Err() })
	}
	sessions := app.NewSessionStore(cache, cfg.RefreshTTL)
	guard.Sessions = sessions

	notifier := app.NewNotifier(infra.Publisher, cfg, logger)
	search := app.NewSearchIndex(infra.ES, cfg.ESMemorialsIndex, cfg.ESVendorsIndex, logger)

	authSvc := app.NewAuthService(repos.Users, jwt, sessions, notifier, logger)
	willSvc := app.NewWillService(repos.Wills, repos.Users, infra.Store, logger)
	memorialSvc := app.NewMemorialService(repos.Memorials, repos.Users, search, infra.Store, logger, cfg.UploadExtensions(), cfg.MaxUploadBytes)
	fundraiserSvc := app.NewFundraiserService(repos.Fundraisers, repos.Memorials, repos.Users, notifier, logger, cfg.DefaultCurrency, cfg.FundraisingPlatformFee)
	vendorSvc := app.NewVendorService(repos.Vendors, repos.Users, search, notifier, logger, cfg.DefaultCurrency, cfg.VendorCommissionRate)
	paymentSvc := app.NewPaymentService(repos.Payments, infra.Mpesa, infra.Card, logger, cfg.DefaultCurrency)
	adminSvc := app.NewAdminService(repos.Users, repos.Vendors, repos.Fundraisers, repos.Stats, sessions, search, cache, logger)

	return &Dependencies{
		Config:      cfg,
		Logger:      logger,
		Guard:       guard,
		Auth:        handlers.NewAuthHandler(authSvc, logger, cfg.CookieDomain, cfg.CookieSecure),
		Wills:       handlers.NewWillHandler(willSvc, logger),
		Memorials:   handlers.NewMemorialHandler(memorialSvc, logger),
		Fundraisers: handlers.NewFundraiserHandler(fundraiserSvc, logger),
		Vendors:     handlers.NewVendorHandler(vendorSvc, authSvc, logger),
		Payments:    handlers.NewPaymentHandler(paymentSvc, logger, cfg.StripePublishableKey),
		Admin:       handlers.NewAdminHandler(adminSvc, notifier, logger),
		Health:      handlers.NewHealthHandler(infra.DB, redisPing),
	}
}

// Mount registers every module on the registry.
func Mount(r *Registry, d *Dependencies) {
	r.Add(modules.NewHealthModule(d.Health))
	r.Add(modules.NewAuthModule(d.Auth, d.Guard))
	r.Add(modules.NewWillModule(d.Wills, d.Guard))
	r.Add(modules.NewMemorialModule(d.Memorials, d.Guard))
	r.Add(modules.NewFundraiserModule(d.Fundraisers, d.Guard))
	r.Add(modules.NewVendorModule(d.Vendors, d.Guard))
	r.Add(modules.NewPaymentModule(d.Payments, d.Guard))
	r.Add(modules.NewAdminModule(d.Admin, d.Guard))
	if d.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(d.Guard))
	}
}
