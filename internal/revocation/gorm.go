package revocation

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/auth_service/internal/models"
)

// GormStore persists revocations in the revoked_tokens table, keyed by the
// exact token string.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token = ?", token).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("revocation lookup: %w", err)
	}
	return count > 0, nil
}

func (s *GormStore) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	record := models.RevokedToken{Token: token, ExpiresAt: expiresAt}
	// The insert is a no-op on duplicate key, so concurrent logouts of the
	// same token cannot error and the original row is never updated.
	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&record).Error; err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *GormStore) Reap(ctx context.Context, now time.Time) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.RevokedToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("reap revoked tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
