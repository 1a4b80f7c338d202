package repositories

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"littlenails/internal/models"
)

// GORMComentarioRepository is a GORM implementation of ComentarioRepository.
type GORMComentarioRepository struct {
	db *gorm.DB
}

// NewGORMComentarioRepository creates a new instance of GORMComentarioRepository.
func NewGORMComentarioRepository(db *gorm.DB) *GORMComentarioRepository {
	return &GORMComentarioRepository{db: db}
}

// Create inserts a new comentario; it starts unread.
func (r *GORMComentarioRepository) Create(comentario *models.Comentario) error {
	if err := r.db.Create(comentario).Error; err != nil {
		return fmt.Errorf("failed to create comentario: %w", err)
	}
	return nil
}

// Search matches the term case-insensitively across nombre, email, mensaje
// and the admin reply. Results keep the moderation inbox order: unread rows
// first, newest first inside each group.
func (r *GORMComentarioRepository) Search(term string) ([]models.Comentario, error) {
	q := r.db.Model(&models.Comentario{})
	if term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where(
			"LOWER(nombre) LIKE ? OR LOWER(email) LIKE ? OR LOWER(mensaje) LIKE ? OR LOWER(COALESCE(respuesta_admin, '')) LIKE ?",
			like, like, like, like,
		)
	}
	var comentarios []models.Comentario
	if err := q.Order("leido ASC, created_at DESC").Find(&comentarios).Error; err != nil {
		return nil, fmt.Errorf("failed to search comentarios: %w", err)
	}
	return comentarios, nil
}

// MarkRead flags one comentario as read.
func (r *GORMComentarioRepository) MarkRead(id uint) error {
	res := r.db.Model(&models.Comentario{}).Where("id = ?", id).Update("leido", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark comentario %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comentario %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// SetReply stores the reply and forces the read flag. A reply implies the
// comment was read.
func (r *GORMComentarioRepository) SetReply(id uint, respuesta string, respondido bool) (*models.Comentario, error) {
	res := r.db.Model(&models.Comentario{}).Where("id = ?", id).Updates(map[string]interface{}{
		"respuesta_admin": respuesta,
		"respondido":      respondido,
		"leido":           true,
	})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to set reply on comentario %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("comentario %d: %w", id, gorm.ErrRecordNotFound)
	}
	var comentario models.Comentario
	if err := r.db.First(&comentario, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload comentario %d: %w", id, err)
	}
	return &comentario, nil
}

// Delete removes a comentario permanently.
func (r *GORMComentarioRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Comentario{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comentario %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comentario %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

// Totals computes the read/unread counts in a single aggregate pass.
func (r *GORMComentarioRepository) Totals() (models.ComentarioTotals, error) {
	var totals models.ComentarioTotals
	err := r.db.Raw(`
		SELECT
			COALESCE(SUM(CASE WHEN leido THEN 1 ELSE 0 END), 0) AS leidos,
			COALESCE(SUM(CASE WHEN leido THEN 0 ELSE 1 END), 0) AS no_leidos
		FROM comentarios
	`).Scan(&totals).Error
	if err != nil {
		return models.ComentarioTotals{}, fmt.Errorf("failed to compute comentario totals: %w", err)
	}
	return totals, nil
}
