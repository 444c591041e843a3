package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/okoval/giftbox/internal/model"
)

const (
	GiftSortOpenDate = "open_date"
	GiftSortNumber   = "number"
)

var (
	ErrGiftNotFound   = errors.New("gift not found")
	ErrNumberConflict = errors.New("gift number already taken")
)

type GiftRepository interface {
	Create(gift *model.Gift) error
	ByID(giftID string) (*model.Gift, error)
	ByNumber(number int) (*model.Gift, error)
	Gifts(sortBy string) ([]*model.Gift, error)
	Update(gift *model.Gift) error
	Delete(giftID string) error
	SetMemoryPhoto(photo *model.MemoryPhoto) error
	DeleteMemoryPhoto(giftID string) error
}

type giftRepository struct {
	db *sqlx.DB
}

func NewGiftRepository(db *sqlx.DB) GiftRepository {
	return &giftRepository{db: db}
}

func (r *giftRepository) Create(gift *model.Gift) error {
	query := `INSERT INTO gifts (id, number, title, author, nickname, open_date, english_description,
	          hint_image_url, hint_text, code_text, is_secret, code, content_path, content_url, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.Exec(query,
		gift.ID,
		gift.Number,
		gift.Title,
		gift.Author,
		gift.Nickname,
		gift.OpenDate,
		gift.EnglishDescription,
		gift.HintImageURL,
		gift.HintText,
		gift.CodeText,
		gift.IsSecret,
		gift.Code,
		gift.ContentPath,
		gift.ContentURL,
		gift.CreatedAt,
		gift.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrNumberConflict
	}

	return err
}

func (r *giftRepository) ByID(giftID string) (*model.Gift, error) {
	gift := &model.Gift{}
	query := `SELECT * FROM gifts WHERE id = $1`

	err := r.db.Get(gift, query, giftID)
	if err == sql.ErrNoRows {
		return nil, ErrGiftNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.attachMemoryPhoto(gift)
	if err != nil {
		return nil, err
	}

	return gift, nil
}

func (r *giftRepository) ByNumber(number int) (*model.Gift, error) {
	gift := &model.Gift{}
	query := `SELECT * FROM gifts WHERE number = $1`

	err := r.db.Get(gift, query, number)
	if err == sql.ErrNoRows {
		return nil, ErrGiftNotFound
	}
	if err != nil {
		return nil, err
	}

	err = r.attachMemoryPhoto(gift)
	if err != nil {
		return nil, err
	}

	return gift, nil
}

func (r *giftRepository) Gifts(sortBy string) ([]*model.Gift, error) {
	var gifts []*model.Gift

	var orderBy string
	switch sortBy {
	case GiftSortNumber:
		orderBy = "ORDER BY number ASC"
	default: // GiftSortOpenDate or empty
		orderBy = "ORDER BY open_date ASC, number ASC"
	}

	query := `SELECT * FROM gifts ` + orderBy

	err := r.db.Select(&gifts, query)
	if err != nil {
		return nil, err
	}

	return gifts, nil
}

func (r *giftRepository) Update(gift *model.Gift) error {
	query := `UPDATE gifts
	          SET number = $1, title = $2, author = $3, nickname = $4, open_date = $5,
	              english_description = $6, hint_image_url = $7, hint_text = $8, code_text = $9,
	              is_secret = $10, code = $11, content_path = $12, content_url = $13, updated_at = $14
	          WHERE id = $15`

	result, err := r.db.Exec(query,
		gift.Number,
		gift.Title,
		gift.Author,
		gift.Nickname,
		gift.OpenDate,
		gift.EnglishDescription,
		gift.HintImageURL,
		gift.HintText,
		gift.CodeText,
		gift.IsSecret,
		gift.Code,
		gift.ContentPath,
		gift.ContentURL,
		time.Now(),
		gift.ID,
	)
	if isUniqueViolation(err) {
		return ErrNumberConflict
	}
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGiftNotFound
	}

	return nil
}

func (r *giftRepository) Delete(giftID string) error {
	query := `DELETE FROM gifts WHERE id = $1`
	result, err := r.db.Exec(query, giftID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGiftNotFound
	}

	return nil
}

func (r *giftRepository) SetMemoryPhoto(photo *model.MemoryPhoto) error {
	query := `INSERT INTO memory_photos (gift_id, photo_url, photo_date)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (gift_id) DO UPDATE SET photo_url = excluded.photo_url, photo_date = excluded.photo_date`

	_, err := r.db.Exec(query, photo.GiftID, photo.PhotoURL, photo.PhotoDate)
	return err
}

func (r *giftRepository) DeleteMemoryPhoto(giftID string) error {
	_, err := r.db.Exec(`DELETE FROM memory_photos WHERE gift_id = $1`, giftID)
	return err
}

func (r *giftRepository) attachMemoryPhoto(gift *model.Gift) error {
	photo := &model.MemoryPhoto{}
	err := r.db.Get(photo, `SELECT * FROM memory_photos WHERE gift_id = $1`, gift.ID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	gift.MemoryPhoto = photo
	return nil
}

// isUniqueViolation matches unique-index errors across the supported
// drivers (sqlite and postgres report them differently).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
