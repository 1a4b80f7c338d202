package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"littlenails/internal/models"
	"littlenails/internal/repositories"
)

// AuthService handles registration, login and profile reads.
type AuthService struct {
	userRepo repositories.UserRepository
	validate *validator.Validate
	hashCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		validate: validator.New(),
		hashCost: bcrypt.DefaultCost,
	}
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	Name            string `json:"name"`
	ApellidoPaterno string `json:"apellidoPaterno" validate:"required"`
	ApellidoMaterno string `json:"apellidoMaterno" validate:"required"`
	Telefono        string `json:"telefono" validate:"required,number,len=10"`
	Ciudad          string `json:"ciudad" validate:"required"`
	CodigoPostal    string `json:"codigoPostal" validate:"required,number,len=5"`
}

var registerMessages = map[string]string{
	"Email":             "Correo inválido",
	"Password.required": "Contraseña requerida",
	"Password":          "La contraseña debe tener al menos 6 caracteres",
	"ApellidoPaterno":   "Apellido paterno requerido",
	"ApellidoMaterno":   "Apellido materno requerido",
	"Telefono":          "Teléfono debe ser de 10 dígitos",
	"Ciudad":            "Ciudad requerida",
	"CodigoPostal":      "Código postal debe ser de 5 dígitos",
}

// Register validates the payload, hashes the password and stores the new
// customer account. Validation problems come back together in one
// ValidationError; a duplicate email is ErrEmailTaken.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	input.ApellidoPaterno = strings.TrimSpace(input.ApellidoPaterno)
	input.ApellidoMaterno = strings.TrimSpace(input.ApellidoMaterno)
	input.Telefono = strings.TrimSpace(input.Telefono)
	input.Ciudad = strings.TrimSpace(input.Ciudad)
	input.CodigoPostal = strings.TrimSpace(input.CodigoPostal)

	if err := s.validate.Struct(input); err != nil {
		return nil, &ValidationError{Errors: validationMessages(err, registerMessages)}
	}

	if existing, err := s.userRepo.GetByEmail(input.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:           input.Email,
		Name:            input.Name,
		ApellidoPaterno: input.ApellidoPaterno,
		ApellidoMaterno: input.ApellidoMaterno,
		Telefono:        input.Telefono,
		Ciudad:          input.Ciudad,
		CodigoPostal:    input.CodigoPostal,
		PasswordHash:    string(hash),
		Role:            models.RoleCustomer,
	}
	if err := s.userRepo.Create(user); err != nil {
		// The unique index is the real arbiter; the lookup above only covers
		// the common case.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// Login verifies the credentials and returns the user. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Profile returns the account fields for the given user.
func (s *AuthService) Profile(userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}

// SeedAdmin provisions the single admin account when the users table is
// completely empty, then demotes any other account still holding the admin
// role. This is a development convenience, not a provisioning mechanism.
func (s *AuthService) SeedAdmin(email, password string) error {
	count, err := s.userRepo.Count()
	if err != nil {
		return err
	}
	if count == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		admin := &models.User{
			Email:        email,
			Name:         "Admin",
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
		}
		if err := s.userRepo.Create(admin); err != nil {
			return err
		}
		log.Printf("Admin seed created: %s", email)
	}
	return s.userRepo.DemoteOtherAdmins(email)
}
