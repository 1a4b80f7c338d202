package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Sesion is the relational row backing one session.
type Sesion struct {
	Token     string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"type:varchar(36)"`
	Email     string
	Role      string
	ExpiresAt time.Time
}

// TableName keeps the legacy table name.
func (Sesion) TableName() string { return "sesiones" }

// GormStore keeps sessions in a database table, the default backend.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates the store and its table if missing.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Sesion{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sesiones table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Save persists a session row.
func (s *GormStore) Save(ctx context.Context, record *Record) error {
	row := Sesion{
		Token:     record.Token,
		UserID:    record.Info.UserID,
		Email:     record.Info.Email,
		Role:      record.Info.Role,
		ExpiresAt: record.ExpiresAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get returns the stored record, or (nil, nil) when the token is unknown.
func (s *GormStore) Get(ctx context.Context, token string) (*Record, error) {
	var row Sesion
	err := s.db.WithContext(ctx).First(&row, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &Record{
		Token: row.Token,
		Info: Info{
			UserID: row.UserID,
			Email:  row.Email,
			Role:   row.Role,
		},
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// Delete removes the session row; deleting a missing token is not an error.
func (s *GormStore) Delete(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Delete(&Sesion{}, "token = ?", token).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
