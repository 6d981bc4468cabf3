// Package pgstore provides a PostgreSQL-backed CredentialStore. Uniqueness
// invariants (one user per email, one active code per (email, purpose), one
// refresh record per user) live in the schema, so concurrent requests resolve
// at the database rather than in the engine.
package pgstore
