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
	"fmt"
	"sync"

	"github.com/uptrace/bun"
)

// global holds the process wide database opened by InitDB.
var global struct {
	sync.RWMutex
	factory *BaseDatabaseFactory
	config  *Config
}

func currentFactory() *BaseDatabaseFactory {
	global.RLock()
	defer global.RUnlock()
	return global.factory
}

func currentConfig() *Config {
	global.RLock()
	defer global.RUnlock()
	return global.config
}

// GetDB returns the global database, or nil before InitDB and after CloseDB.
func GetDB() *bun.DB {
	if f := currentFactory(); f != nil {
		return f.GetDB()
	}
	return nil
}

func GetDatabaseManager() AbstractDatabaseManager {
	if f := currentFactory(); f != nil {
		return f.GetManager()
	}
	return nil
}

// InitDB opens the global database and creates the member and team tables
// when EnableMigrateOnStartup is set. A database opened earlier is closed
// first.
func InitDB(cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	if err := CloseDB(); err != nil {
		GetLogger().Warn("Failed to close previous database", "error", err)
	}

	factory := NewDatabaseFactory()
	if _, err := factory.CreateFromConfig(&cfg.ConnectionConfig); err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	global.Lock()
	global.factory, global.config = factory, cfg
	global.Unlock()

	if err := factory.InitializeDatabase(context.Background(), cfg.DataMigrateConfig.EnableMigrateOnStartup); err != nil {
		_ = CloseDB()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return factory.GetDB(), nil
}

// CloseDB closes the global database. Its health monitor is stopped and
// will not reopen it.
func CloseDB() error {
	global.Lock()
	factory := global.factory
	global.factory, global.config = nil, nil
	global.Unlock()

	if factory == nil {
		return nil
	}
	return factory.Close()
}

func GetHealthStatus(ctx context.Context) *HealthStatus {
	if f := currentFactory(); f != nil {
		return f.GetHealthStatus(ctx)
	}
	return &HealthStatus{LastError: "database not initialized"}
}

func GetDatabaseStats() *DBStats {
	if f := currentFactory(); f != nil {
		return f.GetStats()
	}
	return &DBStats{}
}

// RunMigrations creates the registered tables on the global database.
func RunMigrations() error {
	manager := GetDatabaseManager()
	if manager == nil {
		return fmt.Errorf("database not initialized")
	}
	return manager.RunMigrations(context.Background())
}
