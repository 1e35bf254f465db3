// Package courier holds the courier-side telemetry model.
//
// A courier is identified externally; the only state this service keeps for
// one is the latest Position, a single last-write-wins record per courier.
// Speed and bearing missing from a device report are derived here from the
// previously stored sample.
package courier
