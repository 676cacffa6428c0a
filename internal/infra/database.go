package infra

import (
	"fmt"
	"hash/fnv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ordersync/internal/model"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for the four catalog tables, then applies the idempotent SQL patches that
// GORM cannot express (partial unique index on active products).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tooling.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.LinhaLista{},
		&model.Familia{},
		&model.Produto{},
		&model.Tributo{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// One active row per (tipo_lista, codigo) — the catalog identity
		// invariant. Partial: INATIVO/DUPLICADO history rows may repeat keys.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_produtos_identidade_ativa
		    ON produtos (tipo_lista, codigo)
		    WHERE status = 'ATIVO'`,
		// Hot path of the retry cron: active products missing a tax record.
		`CREATE INDEX IF NOT EXISTS idx_produtos_status_id
		    ON produtos (status, id)`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}

// ── Advisory locks ───────────────────────────────────────────────────────────
// Group reconciliation and family-id allocation are serialized with Postgres
// advisory locks keyed by an fnv-64 hash of the logical lock name.

// LockKey hashes a logical name into the bigint key space advisory locks use.
func LockKey(nome string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(nome))
	return int64(h.Sum64())
}

// AdvisoryXactLock blocks until the lock is acquired; it is released
// automatically when the surrounding transaction commits or rolls back.
func AdvisoryXactLock(tx *gorm.DB, nome string) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(?)", LockKey(nome)).Error
}
