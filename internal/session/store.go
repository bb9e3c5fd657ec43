package session

import (
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"healthcare-app-client/internal/models"
)

// Store is the single credential slot. Every method is atomic with respect
// to the others; Load never observes a partially written credential.
type Store interface {
	// Load returns the stored credential, or "" when the slot is empty.
	Load() (string, error)
	Save(credential string) error
	Clear() error
	// ClearIf empties the slot only while it still holds credential.
	ClearIf(credential string) (bool, error)
}

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu         sync.RWMutex
	credential string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential, nil
}

func (s *MemoryStore) Save(credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = ""
	return nil
}

func (s *MemoryStore) ClearIf(credential string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credential == "" || s.credential != credential {
		return false, nil
	}
	s.credential = ""
	return true, nil
}

// DBStore persists the credential as the single row of stored_credentials.
type DBStore struct {
	mu sync.Mutex
	db *gorm.DB
}

// NewDBStore creates a store over a database opened with models.InitDB
func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var row models.StoredCredential
	if err := s.db.First(&row, "id = ?", models.CredentialSlot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load credential: %w", err)
	}
	return row.Token, nil
}

func (s *DBStore) Save(credential string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := models.StoredCredential{
		BaseModel: models.BaseModel{ID: models.CredentialSlot},
		Token:     credential,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (s *DBStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Delete(&models.StoredCredential{}, "id = ?", models.CredentialSlot).Error; err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

func (s *DBStore) ClearIf(credential string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.db.Where("id = ? AND token = ?", models.CredentialSlot, credential).Delete(&models.StoredCredential{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to clear credential: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
