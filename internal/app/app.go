// Package app assembles the registry services for a storage backend. Both
// the API process and registryctl build on it.
package app

import (
	"database/sql"
	"errors"

	"memorial-registry/internal/audit"
	"memorial-registry/internal/config"
	"memorial-registry/internal/moderation"
	"memorial-registry/internal/rbac"
	"memorial-registry/internal/reporting"
	"memorial-registry/internal/search"
	"memorial-registry/internal/victims"
)

type App struct {
	Victims    *victims.Service
	Moderation *moderation.Service
	Audit      *audit.Service
	Reporting  *reporting.Service
}

// New wires the services. db must be set for the postgres driver and is
// ignored for the memory driver.
func New(cfg config.Config, db *sql.DB) (*App, error) {
	var (
		victimRepo victims.Repository
		modRepo    moderation.Repository
		auditRepo  audit.Repository
		backend    search.Backend
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		victimRepo = victims.NewMemoryRepo()
		modRepo = moderation.NewMemoryRepo()
		auditRepo = audit.NewMemoryRepo()
		backend = search.NewMemoryBackend()
	case config.StorageDriverPostgres, "":
		if db == nil {
			return nil, errors.New("app: postgres storage needs a database handle")
		}
		victimRepo = victims.NewPostgresRepo(db)
		modRepo = moderation.NewPostgresRepo(db)
		auditRepo = audit.NewPostgresRepo(db)
		backend = search.NewPostgresBackend(db)
	default:
		return nil, errors.New("app: unknown storage driver " + cfg.Storage.Driver)
	}

	guard := rbac.NewGuard()
	auditSvc := audit.NewService(auditRepo, guard)
	index := search.NewIndex(backend, search.Mode(cfg.Search.Mode))
	victimSvc := victims.NewService(victimRepo, index, auditSvc, guard)
	modSvc := moderation.NewService(modRepo, victimSvc, auditSvc, guard)
	victimSvc.WithSubmissionUnlinker(modSvc)

	return &App{
		Victims:    victimSvc,
		Moderation: modSvc,
		Audit:      auditSvc,
		Reporting:  reporting.NewService(victimSvc),
	}, nil
}
