// Package repository provides a generic repository built on Bun for CRUD,
// filtered listing, pagination and upsert, plus the member repository that
// exposes the member searches.
package repository
