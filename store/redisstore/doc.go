// Package redisstore provides a Redis-backed CredentialStore for deployments
// that keep the whole credential state in Redis. Email uniqueness is enforced
// with SETNX, user-record updates go through WATCH, and one-time-code keys can
// carry a server-side TTL.
package redisstore
