package router

import (
	"github.com/kenfuse/kenfuse-api/internal/container"
	pginfra "github.com/kenfuse/kenfuse-api/internal/infrastructure/postgres"
)

func postgresRepositories() Repositories {
	pool := container.GetPGPool()
	return Repositories{
		Users:       pginfra.NewUserRepository(pool),
		Wills:       pginfra.NewWillRepository(pool),
		Memorials:   pginfra.NewMemorialRepository(pool),
		Fundraisers: pginfra.NewFundraiserRepository(pool),
		Payments:    pginfra.NewPaymentRepository(pool),
		Vendors:     pginfra.NewVendorRepository(pool),
		Stats:       pginfra.NewStatsRepository(pool),
	}
}

// InitModules wires every module from the container singletons and
// registers it. Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	infra := Infra{
		Redis:     container.GetRedis(),
		ES:        container.GetES(),
		Publisher: container.GetPublisher(),
		Store:     container.GetObjectStore(),
		Mpesa:     container.GetMpesa(),
		Card:      container.GetCard(),
	}
	if pool := container.GetPGPool(); pool != nil {
		infra.DB = pool
	}
	deps := Build(container.GetConfig(), container.GetLogger(), container.GetJWT(), postgresRepositories(), infra)
	Mount(r, deps)
}
