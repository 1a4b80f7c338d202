package models

import "time"

// Roles a user can hold. Self-registration always produces a customer;
// the single admin account is provisioned at first boot.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents an account of the storefront.
type User struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email           string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Name            string    `json:"name"`
	ApellidoPaterno string    `json:"apellido_paterno"`
	ApellidoMaterno string    `json:"apellido_materno"`
	Telefono        string    `json:"telefono"`
	Ciudad          string    `json:"ciudad"`
	CodigoPostal    string    `json:"codigo_postal"`
	PasswordHash    string    `json:"-" gorm:"type:varchar(255)"` // No json tag for security
	Role            string    `json:"role" gorm:"type:varchar(20);default:customer"`
	CreatedAt       time.Time `json:"created_at"`
}
