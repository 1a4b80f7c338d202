package repositories

import "littlenails/internal/models"

// PedidoRepository defines the interface for order data access.
type PedidoRepository interface {
	Create(pedido *models.Pedido) error
	GetAll() ([]models.Pedido, error)
	GetByOwnerOrEmail(userID, email string) ([]models.Pedido, error)
	// Update applies the given whitelisted columns and returns the refreshed
	// row. The caller builds the column set; repository code never accepts
	// caller-supplied column names.
	Update(id uint, columns map[string]interface{}) (*models.Pedido, error)
	Delete(id uint) error
}
