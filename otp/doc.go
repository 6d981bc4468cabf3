// Package otp generates and validates short numeric one-time codes bound to an
// email address and a purpose tag.
//
// # Lifecycle
//
// A code moves through NoCode -> Active -> Consumed|Expired. Persisting a new
// code for the same (email, purpose) replaces the active one; a consumed or
// expired code is deleted and cannot be replayed.
//
// # Architecture boundaries
//
// This package owns code generation and the validity rules (purpose binding,
// TTL, single use). Persistence is delegated to the [Store] supplied by the
// orchestrator; outbound delivery of codes is not this package's concern.
//
// # What this package must NOT do
//
//   - Persist records itself or keep in-process code state.
//   - Send mail.
//   - Import the root authkit package.
package otp
