// Package storage keeps an append-only audit trail of what the bot sent.
//
// The poll state itself is never persisted; a restart always starts from an
// empty state. The audit trail is for operators only.
package storage
