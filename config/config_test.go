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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/roster/database"
	"github.com/tomoncle/roster/types"
)

const sampleConfig = `
database:
  type: postgres
  host: db.local
  port: 5432
  username: roster
  dbname: roster
  connect_timeout: 3s
  slow_query_time: 500ms
  migrate:
    enable_foreign_key: true
log:
  level: debug
  format: json
  levels:
    DATABASE: warn
search:
  count_strategy: always_count
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, database.MemoryDBName, cfg.Database.DBName)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
	assert.True(t, cfg.Database.Migrate.EnableMigrateOnStartup)
	assert.Equal(t, types.CountAvoidance, cfg.CountStrategy())
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 3*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.SlowQueryTime)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.Database.Migrate.EnableForeignKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "warn", cfg.Log.Levels["database"])
	assert.Equal(t, types.AlwaysCount, cfg.CountStrategy())

	dbCfg := cfg.ConfigLoader()
	assert.Equal(t, "db.local", dbCfg.ConnectionConfig.Host)
	assert.True(t, dbCfg.DataMigrateConfig.EnableForeignKey)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ROSTER_DATABASE_HOST", "env.local")
	t.Setenv("ROSTER_SEARCH_COUNT_STRATEGY", "count_avoidance")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "env.local", cfg.Database.Host)
	assert.Equal(t, types.CountAvoidance, cfg.CountStrategy())
}

func TestLoadRejectsUnknownStrategy(t *testing.T) {
	t.Setenv("ROSTER_SEARCH_COUNT_STRATEGY", "sometimes")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count_strategy")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
