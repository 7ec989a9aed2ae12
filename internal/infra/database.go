package infra

import (
	"fmt"

	"caixapos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies the idempotent SQL patches GORM cannot express (the partial
// unique index that enforces one open caixa per operator).
//
// TranslateError makes the postgres driver surface unique violations as
// gorm.ErrDuplicatedKey, which services rely on as the concurrency arbiter.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
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

	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Caixa{},
		&model.Produto{},
		&model.MovimentoEstoque{},
		&model.RegistroAuditoria{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot produce.
// Safe to re-run on an already-patched database.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// The core invariant: at most one open caixa per operator. A partial
		// unique index makes the database reject the losing side of a
		// concurrent duplicate open regardless of what the application read
		// a moment earlier.
		{"partial unique index on open caixas", `
CREATE UNIQUE INDEX IF NOT EXISTS uni_caixas_usuario_aberto
    ON caixas (usuario_id)
    WHERE status = 'aberto'`},
		// Query path for the status/aberto reads.
		{"index on caixas (usuario_id, status)", `
CREATE INDEX IF NOT EXISTS idx_caixas_usuario_status
    ON caixas (usuario_id, status)`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
