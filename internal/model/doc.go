// Package model defines shared data types used across the ingester.
//
// Conventions:
//   - Prices and sizes: decimal.Decimal, exactly as reported by the source
//   - Timestamps: int64 seconds since Unix epoch (Data-API resolution)
//   - IDs: string condition IDs (0x-prefixed) for markets, hex addresses for traders
package model
