package database

import (
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/charge"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/queue"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/vitals"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"opd", "billing", "auth", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&queue.QueueEntry{},
		&charge.ChargeEntry{},
		&vitals.VitalsRecord{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		// Active scope: one doctor's non-terminal entries for a day, served by position
		{
			name:  "idx_queue_entries_active_scope",
			query: `CREATE INDEX IF NOT EXISTS idx_queue_entries_active_scope ON opd.queue_entries (doctor_id, queue_date, position) WHERE status NOT IN ('completed', 'cancelled')`,
		},
		// Token numbers are unique per (doctor, day) and never reused
		{
			name:  "idx_queue_entries_token",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS idx_queue_entries_token ON opd.queue_entries (doctor_id, queue_date, token_number)`,
		},
		// Conflict check: at most one active entry per patient per doctor per day
		{
			name:  "idx_queue_entries_active_patient",
			query: `CREATE UNIQUE INDEX IF NOT EXISTS idx_queue_entries_active_patient ON opd.queue_entries (patient_id, doctor_id, queue_date) WHERE status NOT IN ('completed', 'cancelled')`,
		},
		{
			name:  "idx_charge_entries_admission",
			query: `CREATE INDEX IF NOT EXISTS idx_charge_entries_admission ON billing.charge_entries (patient_id, admission_id, created_at DESC)`,
		},
		{
			name:  "idx_vitals_records_entry",
			query: `CREATE INDEX IF NOT EXISTS idx_vitals_records_entry ON opd.vitals_records (queue_entry_id, recorded_at DESC)`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}
