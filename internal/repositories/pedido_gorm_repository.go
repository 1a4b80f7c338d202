package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"littlenails/internal/models"
)

// GORMPedidoRepository is a GORM implementation of PedidoRepository.
type GORMPedidoRepository struct {
	db *gorm.DB
}

// NewGORMPedidoRepository creates a new instance of GORMPedidoRepository.
func NewGORMPedidoRepository(db *gorm.DB) *GORMPedidoRepository {
	return &GORMPedidoRepository{db: db}
}

// Create inserts a new pedido.
func (r *GORMPedidoRepository) Create(pedido *models.Pedido) error {
	if err := r.db.Create(pedido).Error; err != nil {
		return fmt.Errorf("failed to create pedido: %w", err)
	}
	return nil
}

// GetAll returns every pedido, newest first.
func (r *GORMPedidoRepository) GetAll() ([]models.Pedido, error) {
	var pedidos []models.Pedido
	if err := r.db.Order("created_at DESC").Find(&pedidos).Error; err != nil {
		return nil, fmt.Errorf("failed to list pedidos: %w", err)
	}
	return pedidos, nil
}

// GetByOwnerOrEmail returns the pedidos linked to the user plus any placed
// as a guest under the same email, newest first.
func (r *GORMPedidoRepository) GetByOwnerOrEmail(userID, email string) ([]models.Pedido, error) {
	var pedidos []models.Pedido
	err := r.db.Where("usuario_id = ? OR email = ?", userID, email).
		Order("created_at DESC").Find(&pedidos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pedidos for user %s: %w", userID, err)
	}
	return pedidos, nil
}

// Update applies the given columns to one pedido and reloads it.
func (r *GORMPedidoRepository) Update(id uint, columns map[string]interface{}) (*models.Pedido, error) {
	res := r.db.Model(&models.Pedido{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update pedido %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("pedido %d: %w", id, gorm.ErrRecordNotFound)
	}
	var pedido models.Pedido
	if err := r.db.First(&pedido, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload pedido %d: %w", id, err)
	}
	return &pedido, nil
}

// Delete removes a pedido permanently.
func (r *GORMPedidoRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Pedido{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete pedido %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pedido %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
