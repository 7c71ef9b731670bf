// Package database provides connection pool management for PostgreSQL.
//
// The ingester keeps all trade history in a single Postgres database; the
// trades table carries a (market_id, signature) unique constraint that backs
// duplicate-safe batch inserts.
package database
