package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/auth_service/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

type GormUserRepo struct {
	DB *gorm.DB
}

func NewGormUserRepo(db *gorm.DB) *GormUserRepo {
	return &GormUserRepo{DB: db}
}

func (r *GormUserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return &user, nil
}

// ByID loads the sanitized projection used by /user/me: the password hash
// is never selected.
func (r *GormUserRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Select("id", "email", "first_name", "last_name").
		Where("id = ?", id).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user by id: %w", err)
	}
	return &user, nil
}

func (r *GormUserRepo) Create(ctx context.Context, u *models.User) error {
	// No-op on a duplicate email, so a racing signup reports ErrUserExists
	// instead of surfacing the unique-constraint violation.
	tx := r.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(u)
	if tx.Error != nil {
		return fmt.Errorf("create user: %w", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrUserExists
	}
	return nil
}
