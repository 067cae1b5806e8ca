// Package model defines shared data types for the market mirror.
//
// Conventions:
//   - Prices: kept as their wire textual representation ("0.052"), never
//     round-tripped through float64. Change detection is exact string
//     comparison; only Direction parses a price, and it uses decimals.
//   - Market IDs: int64, normalized from whatever the wire sends.
//   - Pair names: "QUOTE_BASE" on the wire (e.g. "BTC_ETH"), displayed
//     as "BASE/QUOTE".
package model
