package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Project is one saved wiring project: a named, ordered table of segment
// records.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:prj"`

	ID        uuid.UUID `bun:",pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `bun:",nullzero,default:now()" json:"created_at"`
}
