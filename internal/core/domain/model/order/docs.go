// Package order contains the Order aggregate and its Status state machine.
//
// The Order aggregate coordinates the three parties of a delivery: the
// requester awaiting it, the facility dispatching it, and the courier
// performing it. The aggregate owns every status transition, the 3-minute
// acceptance window, and the party checks; adapters express the transitions
// as single conditional updates against the store so that concurrent callers
// racing on the same order get at-most-one-winner semantics without locks.
//
// Status tokens are persisted verbatim and form part of the external API
// contract.
package order
