package service

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okoval/giftbox/internal/model"
	"github.com/okoval/giftbox/internal/repository"
	"github.com/okoval/giftbox/internal/storage"
)

type FileService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
	}
}

// Upload uploads a media file and creates a database record.
// Validation (type, size, content) is the caller's responsibility.
func (s *FileService) Upload(giftID *string, fileType string, file multipart.File, header *multipart.FileHeader) (*model.File, error) {
	ext := filepath.Ext(header.Filename)
	filename := fmt.Sprintf("%s%s", uuid.New().String(), ext)

	folderName := fileType + "s" // image -> images, audio -> audios
	storagePath := filepath.Join("media", folderName, filename)

	err := s.storage.Save(storagePath, file)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	fileModel := &model.File{
		ID:           uuid.New().String(),
		GiftID:       giftID,
		Type:         fileType,
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now(),
	}

	err = s.fileRepo.Create(fileModel)
	if err != nil {
		// If the DB insert fails, try to clean up the uploaded object.
		delErr := s.storage.Delete(storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	return fileModel, nil
}

// URL returns the access URL for a file.
func (s *FileService) URL(file *model.File) string {
	if file == nil {
		return ""
	}
	return s.storage.URL(file.StoragePath)
}

func (s *FileService) ByGiftID(giftID string) ([]*model.File, error) {
	return s.fileRepo.ByGiftID(giftID)
}

// Delete removes a file from storage and database.
func (s *FileService) Delete(fileID string) error {
	file, err := s.fileRepo.ByID(fileID)
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	// Delete from storage (best effort)
	delErr := s.storage.Delete(file.StoragePath)
	if delErr != nil {
		slog.Error("failed to delete file from storage", "error", delErr, "path", file.StoragePath)
	}

	err = s.fileRepo.Delete(fileID)
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	return nil
}
