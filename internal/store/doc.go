// Package store implements the durable trade store on PostgreSQL.
//
// Writes are append-only batch inserts with ON CONFLICT DO NOTHING on
// (market_id, signature), so a batch persist is atomic and re-inserting an
// already-stored trade is harmless. The store is the only component that
// touches the database.
package store
