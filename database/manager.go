/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// MemoryDBName selects a private in-memory sqlite database.
const MemoryDBName = ":memory:"

const pingTimeout = 5 * time.Second

// ErrManagerClosed is returned when the monitor tries to reopen a database
// that Disconnect has closed.
var ErrManagerClosed = errors.New("database manager closed")

var memoryDBSeq atomic.Int64

type defaultDatabaseManager struct {
	config *ConnectionConfig
	logger Logger

	mu     sync.RWMutex
	db     *bun.DB
	closed bool

	// stopMonitor cancels the health monitor of the current connection and
	// monitorDone is closed once that goroutine has returned.
	stopMonitor context.CancelFunc
	monitorDone chan struct{}
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun. If
// config is nil, DefaultConnectionConfig is used.
func NewDatabaseManager(config *ConnectionConfig) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	return &defaultDatabaseManager{config: config, logger: GetLogger()}
}

// Connect opens the database and, when HealthCheckInterval is positive,
// starts a monitor that lives until Disconnect.
func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.db != nil {
		return nil
	}
	if err := dm.openLocked(ctx); err != nil {
		return err
	}
	dm.closed = false

	if dm.config.HealthCheckInterval > 0 {
		monitorCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		dm.stopMonitor, dm.monitorDone = cancel, done
		go dm.monitor(monitorCtx, done)
	}
	dm.logger.Info("Database connected", "type", dm.config.Type, "host", dm.config.Host, "dbname", dm.config.DBName)
	return nil
}

// openLocked replaces dm.db with a fresh, pinged connection. dm.mu must be
// held for writing.
func (dm *defaultDatabaseManager) openLocked(ctx context.Context) error {
	db, err := openBunDB(dm.config)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	dm.addQueryHooks(db)

	pingCtx, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("database connection test failed: %w", err)
	}
	if dm.db != nil {
		_ = dm.db.Close()
	}
	dm.db = db
	return nil
}

func (dm *defaultDatabaseManager) addQueryHooks(db *bun.DB) {
	if dm.config.EnableQueryLog {
		if dm.config.ColorQueryLog {
			db.AddQueryHook(NewQueryHook(os.Stdout, "BUNDEBUG", true))
		} else {
			db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true), bundebug.FromEnv("BUNDEBUG")))
		}
	}
	if dm.config.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(dm.config.SlowQueryTime, dm.logger))
	}
}

// openBunDB opens the driver selected by cfg.Type and tunes its pool.
func openBunDB(cfg *ConnectionConfig) (*bun.DB, error) {
	driver, dsn, dialect, err := dataSource(cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if isMemorySQLite(cfg) {
		// the in-memory database lives as long as its single connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	db := bun.NewDB(sqlDB, dialect)
	db.RegisterModel(RegisteredModelInstances()...)
	return db, nil
}

func dataSource(cfg *ConnectionConfig) (driver, dsn string, dialect schema.Dialect, err error) {
	switch cfg.Type {
	case "mysql":
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
			cfg.ConnectTimeout, cfg.ReadTimeout, cfg.WriteTimeout)
		return "mysql", dsn, mysqldialect.New(), nil
	case "postgres", "postgresql", "pgx":
		sslMode := cfg.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
			sslMode, int(cfg.ConnectTimeout.Seconds()))
		driver = "postgres"
		if cfg.Type == "pgx" {
			driver = "pgx"
		}
		return driver, dsn, pgdialect.New(), nil
	case "sqlite", "sqlite3":
		dsn = cfg.DBName + ".db"
		if isMemorySQLite(cfg) {
			dsn = fmt.Sprintf("file:roster_mem_%d?mode=memory&cache=shared", memoryDBSeq.Add(1))
		}
		return sqliteshim.ShimName, dsn, sqlitedialect.New(), nil
	}
	return "", "", nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
}

func isMemorySQLite(cfg *ConnectionConfig) bool {
	return (cfg.Type == "sqlite" || cfg.Type == "sqlite3") &&
		(cfg.DBName == "" || cfg.DBName == MemoryDBName)
}

// Disconnect stops the health monitor and closes the database. The monitor
// never reopens a database after Disconnect.
func (dm *defaultDatabaseManager) Disconnect() error {
	dm.mu.Lock()
	dm.closed = true
	db, stop, done := dm.db, dm.stopMonitor, dm.monitorDone
	dm.db, dm.stopMonitor, dm.monitorDone = nil, nil, nil
	dm.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		dm.log().Error("Failed to close database connection", "error", err)
		return err
	}
	dm.log().Info("Database connection closed")
	return nil
}

func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	if err := dm.Disconnect(); err != nil {
		dm.log().Warn("Error disconnecting existing connection", "error", err)
	}
	return dm.Connect(ctx)
}

// reopen swaps in a new connection for the monitor unless the manager has
// been closed meanwhile.
func (dm *defaultDatabaseManager) reopen(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	if dm.closed {
		return ErrManagerClosed
	}
	return dm.openLocked(ctx)
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	if db := dm.GetDB(); db != nil {
		return db.DB
	}
	return nil
}

// HealthCheck pings the database without holding the manager lock.
func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	status := &HealthStatus{CheckedAt: time.Now()}
	db := dm.GetDB()
	if db == nil {
		status.LastError = "database not connected"
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	err := db.PingContext(pingCtx)
	status.ResponseTime = time.Since(status.CheckedAt)
	status.Pool = statsOf(db.DB)
	if err != nil {
		status.LastError = err.Error()
		return status
	}
	status.Healthy = true
	return status
}

// monitor pings on every tick. After a failed check it reopens the
// connection, at most MaxReconnectTries times in a row, when reconnect is
// enabled.
func (dm *defaultDatabaseManager) monitor(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(dm.config.HealthCheckInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status := dm.HealthCheck(ctx)
		if status.Healthy {
			failures = 0
			continue
		}
		if ctx.Err() != nil {
			return
		}
		dm.log().Warn("Database health check failed", "error", status.LastError)
		if !dm.config.EnableReconnect || failures >= dm.config.MaxReconnectTries {
			continue
		}

		failures++
		select {
		case <-ctx.Done():
			return
		case <-time.After(dm.config.ReconnectInterval):
		}
		openCtx, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
		err := dm.reopen(openCtx)
		cancel()
		switch {
		case errors.Is(err, ErrManagerClosed):
			return
		case err != nil:
			dm.log().Error("Reconnect failed", "error", err, "try", failures)
		default:
			dm.log().Info("Reconnect succeeded", "try", failures)
			failures = 0
		}
	}
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	stats := statsOf(dm.GetSQLDB())
	return &stats
}

func statsOf(sqlDB *sql.DB) DBStats {
	if sqlDB == nil {
		return DBStats{}
	}
	s := sqlDB.Stats()
	return DBStats{
		MaxOpenConns: s.MaxOpenConnections,
		OpenConns:    s.OpenConnections,
		InUse:        s.InUse,
		Idle:         s.Idle,
		WaitCount:    s.WaitCount,
		WaitDuration: s.WaitDuration,
	}
}

// RunMigrations creates the registered tables using the migrate settings of
// the global configuration, if any.
func (dm *defaultDatabaseManager) RunMigrations(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	var migrate DataMigrateConfig
	if cfg := currentConfig(); cfg != nil {
		migrate = cfg.DataMigrateConfig
	}
	return NewMigrationManager(db, dm.log(), migrate).RunMigrations(ctx)
}

func (dm *defaultDatabaseManager) log() Logger {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.logger
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
