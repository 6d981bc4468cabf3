// Package authkit is a credential and token lifecycle engine: account
// creation, credential verification, session-token issuance, email-ownership
// verification via one-time codes, and password-recovery flows.
//
// The package is the public surface. It exposes [Engine], [Builder], [Config],
// the [Result] envelope, and the collaborator interfaces ([CredentialStore],
// [Mailer], [PasswordPolicy]). Hashing, one-time-code rules, and token
// issuance live in the password, otp, and token sub-packages; ready-made
// CredentialStore implementations live under store/.
//
// # Architecture boundaries
//
// Persistent storage, outbound mail delivery, password-complexity rules, and
// the transport layer are external collaborators reached through interfaces.
// The engine owns sequencing of checks, hashing discipline, token rotation,
// and the single-use semantics of one-time codes, nothing else.
//
// # Concurrency
//
// Engine methods are safe to call from multiple goroutines after
// [Builder.Build]. Flows are single-pass: each collaborator call completes
// before the next begins, and concurrent requests for the same email are
// resolved by the store's uniqueness constraints, not serialized here. The
// refresh-hash upsert is deliberately last-writer-wins: a new signin
// supersedes the previous refresh token for that user.
package authkit
