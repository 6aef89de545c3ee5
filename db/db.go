package db

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Gin_postgres_redis_inventory/config"
	"Gin_postgres_redis_inventory/models"
)

const (
	embeddedDataPath = "./db_data"
	embeddedPort     = 5433
)

// DB is the gorm handle plus the embedded Postgres process when one was
// started.
type DB struct {
	*gorm.DB
	embedded *embeddedpostgres.EmbeddedPostgres
}

// ConnectDB opens Postgres and migrates. A localhost host with no password
// starts an embedded Postgres under ./db_data instead of dialing out.
func ConnectDB(cfg config.DatabaseConfig, log *slog.Logger) (*DB, error) {
	var embedded *embeddedpostgres.EmbeddedPostgres
	password := cfg.Password
	level := logger.Warn

	if cfg.Embedded() {
		log.Info("starting embedded postgres", "port", embeddedPort, "data", embeddedDataPath)
		embedded = embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
			DataPath(embeddedDataPath).
			Port(uint32(embeddedPort)).
			Database(cfg.Name).
			Username(cfg.User).
			Password("postgres"))
		if err := embedded.Start(); err != nil {
			return nil, fmt.Errorf("start embedded postgres: %w", err)
		}
		cfg.Port = strconv.Itoa(embeddedPort)
		password = "postgres"
		level = logger.Silent
	} else {
		log.Info("connecting to postgres", "host", cfg.Host, "port", cfg.Port, "db", cfg.Name)
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Host, cfg.User, password, cfg.Name, cfg.Port,
	)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		if embedded != nil {
			_ = embedded.Stop()
		}
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := Migrate(gdb); err != nil {
		if embedded != nil {
			_ = embedded.Stop()
		}
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database connected")
	return &DB{DB: gdb, embedded: embedded}, nil
}

// Close closes the pool and stops the embedded process if any.
func (d *DB) Close() error {
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if d.embedded != nil {
		return d.embedded.Stop()
	}
	return nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return err
	}

	stmts := []string{
		// 一个位置最多被一台设备引用
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_one_device_per_location
		  ON %s (location_id) WHERE location_id IS NOT NULL;`, models.DeviceTable, models.DeviceTable),
	}
	// 同一设备在同一类单据里最多一条未关闭明细
	for _, t := range []string{models.LoanSlipDetailTable, models.MaintenanceSlipDetailTable} {
		stmts = append(stmts,
			fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_device
			  ON %s (device_id) WHERE open;`, t, t),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_open_by_slip
			  ON %s (slip_id) WHERE open;`, t, t),
		)
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}
