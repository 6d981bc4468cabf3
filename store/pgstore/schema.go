package pgstore

// Schema is the DDL the store expects. Apply it with your deployment's
// migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	is_verified   BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS otps (
	email      TEXT NOT NULL,
	code       TEXT NOT NULL,
	purpose    SMALLINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (email, purpose)
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	user_id    TEXT PRIMARY KEY,
	token_hash TEXT NOT NULL
);
`
