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

// Package config loads roster settings from a YAML file and ROSTER_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/types"
	"github.com/tomoncle/roster/utils"
)

// EnvPrefix prefixes every environment override, e.g.
// ROSTER_DATABASE_HOST or ROSTER_SEARCH_COUNT_STRATEGY.
const EnvPrefix = "ROSTER"

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Search   SearchConfig   `mapstructure:"search"`
}

type DatabaseConfig struct {
	database.ConnectionConfig `mapstructure:",squash"`
	Migrate                   database.DataMigrateConfig `mapstructure:"migrate"`
}

type LogConfig struct {
	Level  string            `mapstructure:"level"`
	Format string            `mapstructure:"format"` // text or json
	Levels map[string]string `mapstructure:"levels"` // per logger name
}

type SearchConfig struct {
	CountStrategy string `mapstructure:"count_strategy"` // always_count or count_avoidance
}

// Load reads path, if not empty, and applies environment overrides on top
// of the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that
// the file does not mention.
func setDefaults(v *viper.Viper) {
	def := database.DefaultConnectionConfig()
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.username", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", database.MemoryDBName)
	v.SetDefault("database.sslmode", "")
	v.SetDefault("database.max_idle_conns", def.MaxIdleConns)
	v.SetDefault("database.max_open_conns", def.MaxOpenConns)
	v.SetDefault("database.conn_max_lifetime", def.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", def.ConnMaxIdleTime)
	v.SetDefault("database.connect_timeout", def.ConnectTimeout)
	v.SetDefault("database.read_timeout", def.ReadTimeout)
	v.SetDefault("database.write_timeout", def.WriteTimeout)
	v.SetDefault("database.enable_reconnect", def.EnableReconnect)
	v.SetDefault("database.reconnect_interval", def.ReconnectInterval)
	v.SetDefault("database.max_reconnect_tries", def.MaxReconnectTries)
	v.SetDefault("database.health_check_interval", def.HealthCheckInterval)
	v.SetDefault("database.enable_query_log", def.EnableQueryLog)
	v.SetDefault("database.color_query_log", false)
	v.SetDefault("database.slow_query_time", def.SlowQueryTime)
	v.SetDefault("database.migrate.enable_migrate_on_startup", true)
	v.SetDefault("database.migrate.enable_foreign_key", false)
	v.SetDefault("database.migrate.foreign_key_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("search.count_strategy", types.CountAvoidance.Name())
}

func (c *Config) Validate() error {
	var errs []error
	if _, ok := types.ParseCountStrategy(c.Search.CountStrategy); !ok {
		errs = append(errs, fmt.Errorf("unknown search.count_strategy %q", c.Search.CountStrategy))
	}
	if c.Database.Type == "" {
		errs = append(errs, errors.New("database.type is required"))
	}
	return errors.Join(errs...)
}

// CountStrategy returns the configured strategy, CountAvoidance if unset.
func (c *Config) CountStrategy() types.CountStrategy {
	s, ok := types.ParseCountStrategy(c.Search.CountStrategy)
	if !ok {
		return types.CountAvoidance
	}
	return s
}

// ConfigLoader returns the database settings for database.InitDB.
func (c *Config) ConfigLoader() *database.Config {
	return &database.Config{
		ConnectionConfig:  c.Database.ConnectionConfig,
		DataMigrateConfig: c.Database.Migrate,
	}
}

// ApplyLogging configures the utils loggers: format first so loggers
// created afterwards pick it up, then the levels.
func (c *Config) ApplyLogging() {
	utils.ConfigureConsoleLogFormat(c.Log.Format)
	utils.ConfigureLogLevel(c.Log.Level)
	// viper lower-cases keys while logger names are usually upper case
	for name, level := range c.Log.Levels {
		if !utils.SetLoggerLevel(name, level) {
			utils.SetLoggerLevel(strings.ToUpper(name), level)
		}
	}
}
