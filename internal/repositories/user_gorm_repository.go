package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"littlenails/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

// Create inserts a new user. The unique index on email surfaces duplicates
// as gorm.ErrDuplicatedKey, which is kept in the chain for the caller.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by exact email match.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// Count returns the total number of user rows.
func (r *GORMUserRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// DemoteOtherAdmins resets any account other than the seeded admin back to
// the customer role, including rows with a missing role from older schemas.
func (r *GORMUserRepository) DemoteOtherAdmins(adminEmail string) error {
	err := r.db.Model(&models.User{}).
		Where("email <> ? AND (role IS NULL OR role = '' OR role = ?)", adminEmail, models.RoleAdmin).
		Update("role", models.RoleCustomer).Error
	if err != nil {
		return fmt.Errorf("failed to demote stray admins: %w", err)
	}
	return nil
}
