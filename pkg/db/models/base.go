package models

import "github.com/google/uuid"

// ensureID assigns a v4 id when the caller did not provide one. Ids are minted in Go
// so the same models run against Postgres and SQLite.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
