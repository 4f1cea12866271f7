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
	"time"

	"github.com/uptrace/bun"
)

// AbstractDatabaseManager owns one database connection and the optional
// monitor that pings it.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	RunMigrations(ctx context.Context) error
	GetStats() *DBStats
	SetLogger(logger Logger)
}

// HealthStatus is the outcome of one ping.
type HealthStatus struct {
	Healthy      bool          `json:"healthy"`
	ResponseTime time.Duration `json:"response_time"`
	LastError    string        `json:"last_error,omitempty"`
	CheckedAt    time.Time     `json:"checked_at"`
	Pool         DBStats       `json:"pool"`
}

// DBStats is the subset of sql.DBStats worth exporting.
type DBStats struct {
	MaxOpenConns int           `json:"max_open_conns"`
	OpenConns    int           `json:"open_conns"`
	InUse        int           `json:"in_use"`
	Idle         int           `json:"idle"`
	WaitCount    int64         `json:"wait_count"`
	WaitDuration time.Duration `json:"wait_duration"`
}

// ConnectionConfig describes how to connect to a database and tune its pool.
// A positive HealthCheckInterval starts a monitor that pings the database
// and, with EnableReconnect, reopens it after a failed ping.
type ConnectionConfig struct {
	Type                string        `json:"type" mapstructure:"type"` // postgres, pgx, mysql, sqlite
	Host                string        `json:"host" mapstructure:"host"`
	Port                int           `json:"port" mapstructure:"port"`
	Username            string        `json:"username" mapstructure:"username"`
	Password            string        `json:"password" mapstructure:"password"`
	DBName              string        `json:"dbname" mapstructure:"dbname"` // sqlite: file name without ".db", or ":memory:"
	SSLMode             string        `json:"sslmode" mapstructure:"sslmode"`
	MaxIdleConns        int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	MaxOpenConns        int           `json:"max_open_conns" mapstructure:"max_open_conns"`
	ConnMaxLifetime     time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime     time.Duration `json:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
	ConnectTimeout      time.Duration `json:"connect_timeout" mapstructure:"connect_timeout"`
	ReadTimeout         time.Duration `json:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout        time.Duration `json:"write_timeout" mapstructure:"write_timeout"`
	EnableReconnect     bool          `json:"enable_reconnect" mapstructure:"enable_reconnect"`
	ReconnectInterval   time.Duration `json:"reconnect_interval" mapstructure:"reconnect_interval"`
	MaxReconnectTries   int           `json:"max_reconnect_tries" mapstructure:"max_reconnect_tries"`
	HealthCheckInterval time.Duration `json:"health_check_interval" mapstructure:"health_check_interval"`
	EnableQueryLog      bool          `json:"enable_query_log" mapstructure:"enable_query_log"`
	ColorQueryLog       bool          `json:"color_query_log" mapstructure:"color_query_log"`
	SlowQueryTime       time.Duration `json:"slow_query_time" mapstructure:"slow_query_time"`
}

// DataMigrateConfig controls table creation on startup. ForeignKeyFile
// optionally overrides the member to team foreign key, see
// LoadMemberTeamForeignKey.
type DataMigrateConfig struct {
	EnableMigrateOnStartup bool   `json:"enable_migrate_on_startup" mapstructure:"enable_migrate_on_startup"`
	EnableForeignKey       bool   `json:"enable_foreign_key" mapstructure:"enable_foreign_key"`
	ForeignKeyFile         string `json:"foreign_key_file" mapstructure:"foreign_key_file"`
}

// Config aggregates connection and migration settings.
type Config struct {
	ConnectionConfig  ConnectionConfig  `json:"connection_config" mapstructure:"connection"`
	DataMigrateConfig DataMigrateConfig `json:"data_migrate_config" mapstructure:"migrate"`
}

// DefaultConnectionConfig returns the pool, timeout and monitor defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:        10,
		MaxOpenConns:        100,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     30 * time.Minute,
		ConnectTimeout:      10 * time.Second,
		ReadTimeout:         30 * time.Second,
		WriteTimeout:        30 * time.Second,
		EnableReconnect:     true,
		ReconnectInterval:   5 * time.Second,
		MaxReconnectTries:   3,
		HealthCheckInterval: 5 * time.Minute,
		SlowQueryTime:       2 * time.Second,
	}
}
