package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/okoval/giftbox/internal/model"
)

var (
	ErrContentNotFound = errors.New("content not found")
)

type ContentRepository interface {
	ByGiftID(giftID string) (*model.ContentDocument, error)
	Save(giftID string, doc *model.ContentDocument) error
	Delete(giftID string) error
}

type contentRepository struct {
	db *sqlx.DB
}

func NewContentRepository(db *sqlx.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) ByGiftID(giftID string) (*model.ContentDocument, error) {
	var raw string
	query := `SELECT document FROM contents WHERE gift_id = $1`

	err := r.db.Get(&raw, query, giftID)
	if err == sql.ErrNoRows {
		return nil, ErrContentNotFound
	}
	if err != nil {
		return nil, err
	}

	return model.ParseContentDocument([]byte(raw))
}

func (r *contentRepository) Save(giftID string, doc *model.ContentDocument) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode content document: %w", err)
	}

	now := time.Now()
	query := `INSERT INTO contents (gift_id, document, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (gift_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`

	_, err = r.db.Exec(query, giftID, string(raw), now, now)
	return err
}

func (r *contentRepository) Delete(giftID string) error {
	_, err := r.db.Exec(`DELETE FROM contents WHERE gift_id = $1`, giftID)
	return err
}
