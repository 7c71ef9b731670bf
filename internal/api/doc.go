// Package api provides the Polymarket API client for REST communication.
//
// Endpoints:
//   - Gamma API (market metadata): https://gamma-api.polymarket.com
//   - Data-API (trade history): https://data-api.polymarket.com
//
// Both are public and unauthenticated. The Data-API paginates trades by
// offset; callers should keep per-query offsets small (see internal/fetch).
package api
