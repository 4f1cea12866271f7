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
	"os"
	"sort"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// MigrationManager creates the tables of the registered models and records
// which migration steps have been applied.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
	config DataMigrateConfig
}

// Migration represents an applied migration record stored in the database.
type Migration struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
}

func NewMigrationManager(db *bun.DB, logger Logger, config DataMigrateConfig) *MigrationManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationManager{db: db, logger: logger, config: config}
}

// RunMigrations creates the migration tracking table if needed and executes
// every pending migration in ascending version order.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	if _, err := mm.db.NewCreateTable().Model((*Migration)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := mm.getAllMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	for _, migration := range migrations {
		if err := mm.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
	}

	mm.logger.Info("Database migrations completed")
	return nil
}

func (mm *MigrationManager) getAllMigrations() []MigrationItem {
	migrations := []MigrationItem{
		{
			Version:     "001",
			Name:        "create_base_tables",
			Description: "Create tables of the registered models",
			Up:          mm.createBaseTables,
		},
	}
	// sqlite cannot ALTER TABLE ADD CONSTRAINT; its keys are declared inline by 001.
	if mm.config.EnableForeignKey && mm.db.Dialect().Name() != dialect.SQLite {
		migrations = append(migrations, MigrationItem{
			Version:     "002",
			Name:        "add_foreign_keys",
			Description: "Add table foreign key constraints",
			Up:          mm.addForeignKeys,
		})
	}
	return migrations
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", migration.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := migration.Up(ctx, tx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&Migration{
			Version:     migration.Version,
			Name:        migration.Name,
			AppliedAt:   time.Now(),
			Description: migration.Description,
		}).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	mm.logger.Info("Migration executed", "version", migration.Version, "name", migration.Name)
	return nil
}

func (mm *MigrationManager) createBaseTables(ctx context.Context, db bun.IDB) error {
	inlineForeignKeys := mm.config.EnableForeignKey && db.Dialect().Name() == dialect.SQLite
	for _, model := range RegisteredModelInstances() {
		q := db.NewCreateTable().Model(model).IfNotExists()
		if inlineForeignKeys {
			q = q.WithForeignKeys()
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %T: %w", model, err)
		}
	}
	return nil
}

func (mm *MigrationManager) addForeignKeys(ctx context.Context, db bun.IDB) error {
	fk := MemberTeamForeignKey()
	if path := mm.config.ForeignKeyFile; path != "" {
		loaded, err := LoadMemberTeamForeignKey(path)
		if err != nil {
			return err
		}
		fk = loaded
	}
	AddForeignKey(ctx, db, fk, mm.logger)
	return nil
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}
