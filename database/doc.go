// Package database provides connection management, table migrations for the
// registered models, foreign key handling, configuration types, logging,
// query hooks, health checks and SQL error classification built on Bun.
package database
