// Package kernel contains shared value objects used across the dispatch
// domain model.
//
// The kernel provides:
//   - UUID: validated identifier wrapping github.com/google/uuid
//   - GeoPoint: validated WGS84 coordinate pair with great-circle distance
//     (haversine) and initial-bearing math
//
// All value objects are immutable, enforce their invariants at construction
// time, and report improper construction through Validate. They carry no
// behavior beyond what every layer of the system needs; order- and
// courier-specific rules live in their own model packages.
package kernel
