package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/okoval/giftbox/internal/model"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(file *model.File) error
	ByID(fileID string) (*model.File, error)
	ByGiftID(giftID string) ([]*model.File, error)
	Delete(fileID string) error
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.File) error {
	query := `INSERT INTO files (id, gift_id, type, filename, original_name, mime_type, size, storage_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		file.ID,
		file.GiftID,
		file.Type,
		file.Filename,
		file.OriginalName,
		file.MimeType,
		file.Size,
		file.StoragePath,
		file.CreatedAt,
	)

	return err
}

func (r *fileRepository) ByID(fileID string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.Get(file, query, fileID)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *fileRepository) ByGiftID(giftID string) ([]*model.File, error) {
	var files []*model.File
	query := `SELECT * FROM files WHERE gift_id = $1 ORDER BY created_at ASC`

	err := r.db.Select(&files, query, giftID)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (r *fileRepository) Delete(fileID string) error {
	result, err := r.db.Exec(`DELETE FROM files WHERE id = $1`, fileID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrFileNotFound
	}

	return nil
}
