package repositories

import "littlenails/internal/models"

// ComentarioRepository defines the interface for comment data access.
type ComentarioRepository interface {
	Create(comentario *models.Comentario) error
	// Search returns comments matching the term (all of them when the term is
	// empty), unread first and newest first within each group.
	Search(term string) ([]models.Comentario, error)
	MarkRead(id uint) error
	// SetReply stores the reply text, the recomputed respondido flag and
	// forces leido, then returns the refreshed row.
	SetReply(id uint, respuesta string, respondido bool) (*models.Comentario, error)
	Delete(id uint) error
	Totals() (models.ComentarioTotals, error)
}
