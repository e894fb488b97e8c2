package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"imageModeration/internal/config"
	"imageModeration/internal/models"
	"imageModeration/internal/storage"
	"time"
)

type Storage struct {
	DB *sql.DB
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	return Open(connStr)
}

func Open(connStr string) (*Storage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return &Storage{DB: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id          UUID PRIMARY KEY,
    username    TEXT NOT NULL UNIQUE,
    avatar_path TEXT
);

CREATE TABLE IF NOT EXISTS images (
    id           UUID PRIMARY KEY,
    owner_id     UUID NOT NULL,
    storage_path TEXT NOT NULL UNIQUE,
    approved     BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_images_owner_id ON images (owner_id);`

func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// InsertImages stores a whole upload batch in one transaction using COPY, so
// either every record becomes visible or none does.
func (s *Storage) InsertImages(ctx context.Context, images []models.Image) ([]models.Image, error) {
	const op = "storage.postgres.InsertImages"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("images", "id", "owner_id", "storage_path", "approved", "created_at"))
	if err != nil {
		return nil, fmt.Errorf("%s: prepare copy: %w", op, err)
	}

	now := time.Now().UTC()
	saved := make([]models.Image, len(images))

	for i, img := range images {
		if img.CreatedAt.IsZero() {
			img.CreatedAt = now
		}

		if _, err = stmt.ExecContext(ctx, img.ID, img.OwnerID, img.StoragePath, img.Approved, img.CreatedAt); err != nil {
			_ = stmt.Close()
			return nil, fmt.Errorf("%s: copy row %d: %w", op, i, err)
		}

		saved[i] = img
	}

	if _, err = stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		return nil, fmt.Errorf("%s: flush copy: %w", op, err)
	}

	if err = stmt.Close(); err != nil {
		return nil, fmt.Errorf("%s: close copy: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return saved, nil
}

func (s *Storage) GetImage(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	const op = "storage.postgres.GetImage"

	query := `
        SELECT id, owner_id, storage_path, approved, created_at
        FROM images
        WHERE id = $1`

	image := &models.Image{}

	err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&image.ID,
		&image.OwnerID,
		&image.StoragePath,
		&image.Approved,
		&image.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrImageNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

func (s *Storage) ApproveImage(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.ApproveImage"

	query := `
        UPDATE images
        SET approved = TRUE
        WHERE id = $1`

	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrImageNotFound)
	}

	return nil
}

// DeleteImagesByOwner removes every record of the owner regardless of its
// approval state and reports how many were removed.
func (s *Storage) DeleteImagesByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	const op = "storage.postgres.DeleteImagesByOwner"

	query := `
        DELETE FROM images
        WHERE owner_id = $1`

	result, err := s.DB.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return rowsAffected, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.postgres.GetUserByID"

	return s.getUser(ctx, op, `SELECT id, username, avatar_path FROM users WHERE id = $1`, id)
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.postgres.GetUserByUsername"

	return s.getUser(ctx, op, `SELECT id, username, avatar_path FROM users WHERE username = $1`, username)
}

func (s *Storage) getUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	user := &models.User{}

	err := s.DB.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.AvatarPath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Storage) UpdateUserAvatar(ctx context.Context, userID uuid.UUID, avatarPath string) error {
	const op = "storage.postgres.UpdateUserAvatar"

	result, err := s.DB.ExecContext(ctx, `UPDATE users SET avatar_path = $1 WHERE id = $2`, avatarPath, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}
