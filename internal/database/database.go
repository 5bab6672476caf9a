// Package database is the hand-written query layer over Postgres.
// All access goes through *Queries so callers never build SQL themselves.
package database

import "database/sql"

type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}
