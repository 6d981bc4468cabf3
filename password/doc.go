// Package password implements one-way hashing and verification with Argon2id.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification recomputes the digest with the parameters embedded in the
// stored hash and compares in constant time. A mismatch returns false; only a
// hash that cannot be parsed is an error.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (length,
// confirmation matching) is enforced by the Engine's policy collaborator. The
// same hasher digests opaque refresh tokens before they are persisted.
//
// # What this package must NOT do
//
//   - Store or retrieve secrets — callers supply plaintext and receive hashes.
//   - Import any other authkit package.
//   - Log plaintext secrets or hash parameters at runtime.
package password
