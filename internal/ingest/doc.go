// Package ingest drives the end-to-end historical ingestion pipeline.
//
// A run resolves the earliest timestamp worth fetching, tiles the range up to
// now with daily intervals, fetches each interval through the rate-limited
// client, filters duplicates by signature, and persists accepted trades in
// bounded batches. Runs are idempotent: all progress state is re-derived from
// the durable store, never from bookmarks.
package ingest
