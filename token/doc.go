// Package token manages access-token issuance and verification plus opaque
// refresh-token minting.
//
// Access tokens are HS256 JWTs asserting {id: userID} with a configured TTL.
// Refresh tokens are random opaque identifiers; the cleartext is returned to
// the caller exactly once and only its Argon2id hash is ever persisted, keyed
// by user id with single-slot replacement semantics.
package token
