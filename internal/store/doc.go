// Package store persists the game state in SQLite: the item catalog,
// players, vote tokens, audit records, seen pairs, and resumable
// deathmatch runs. Multi-row settlements run in single transactions so
// a crash never leaves a consumed token without its audit record.
package store
