package models

import (
	"database/sql"
	"github.com/google/uuid"
	"time"
)

// Image is the metadata record of one stored, transformed file.
// StoragePath is relative to the images root and is the only link to the bytes.
type Image struct {
	ID          uuid.UUID `db:"id" json:"id"`
	OwnerID     uuid.UUID `db:"owner_id" json:"ownerId"`
	StoragePath string    `db:"storage_path" json:"storagePath"`
	Approved    bool      `db:"approved" json:"approved"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// User is the slice of the user directory the image pipeline depends on.
type User struct {
	ID       uuid.UUID `db:"id"`
	Username string    `db:"username"`
	// AvatarPath is relative to the avatars root.
	AvatarPath sql.NullString `db:"avatar_path"`
}
