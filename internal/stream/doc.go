// Package stream maintains a WebSocket connection to the CLOB market channel.
//
// The market channel pushes book snapshots, price changes, and last trade
// prices for subscribed token IDs. Stream events carry no trader wallet, so
// they cannot be turned into durable trade rows; the stream is used to watch
// live activity on a market while its history is being backfilled.
package stream
