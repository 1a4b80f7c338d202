package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"littlenails/internal/models"
	"littlenails/internal/repositories"
)

// ComentarioService handles public comment intake and the admin moderation
// workflow. Every mutation returns refreshed totals so the moderation UI
// never needs a follow-up aggregate query.
type ComentarioService struct {
	comentarioRepo repositories.ComentarioRepository
}

// NewComentarioService creates a new ComentarioService.
func NewComentarioService(comentarioRepo repositories.ComentarioRepository) *ComentarioService {
	return &ComentarioService{comentarioRepo: comentarioRepo}
}

// Submit stores a visitor comment. All three fields are required.
func (s *ComentarioService) Submit(nombre, email, mensaje string) (*models.Comentario, error) {
	if nombre == "" || email == "" || mensaje == "" {
		return nil, ErrMissingFields
	}
	comentario := &models.Comentario{
		Nombre:  nombre,
		Email:   email,
		Mensaje: mensaje,
		Leido:   false,
	}
	if err := s.comentarioRepo.Create(comentario); err != nil {
		return nil, err
	}
	return comentario, nil
}

// Search lists comments matching the optional term, unread first, plus the
// current totals.
func (s *ComentarioService) Search(term string) ([]models.Comentario, models.ComentarioTotals, error) {
	items, err := s.comentarioRepo.Search(strings.TrimSpace(term))
	if err != nil {
		return nil, models.ComentarioTotals{}, err
	}
	totals, err := s.comentarioRepo.Totals()
	if err != nil {
		return nil, models.ComentarioTotals{}, err
	}
	return items, totals, nil
}

// MarkRead flags a comment as read and returns the refreshed totals.
func (s *ComentarioService) MarkRead(id uint) (models.ComentarioTotals, error) {
	if err := s.comentarioRepo.MarkRead(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ComentarioTotals{}, ErrNotFound
		}
		return models.ComentarioTotals{}, fmt.Errorf("failed to mark comentario %d: %w", id, err)
	}
	return s.comentarioRepo.Totals()
}

// SetReply stores the admin reply. The reply is trimmed, respondido is
// recomputed from the trimmed text and leido is forced: a reply implies the
// comment was read.
func (s *ComentarioService) SetReply(id uint, respuesta string) (*models.Comentario, models.ComentarioTotals, error) {
	trimmed := strings.TrimSpace(respuesta)
	comentario, err := s.comentarioRepo.SetReply(id, trimmed, trimmed != "")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ComentarioTotals{}, ErrNotFound
		}
		return nil, models.ComentarioTotals{}, fmt.Errorf("failed to reply to comentario %d: %w", id, err)
	}
	totals, err := s.comentarioRepo.Totals()
	if err != nil {
		return nil, models.ComentarioTotals{}, err
	}
	return comentario, totals, nil
}

// Delete removes a comment and returns the refreshed totals.
func (s *ComentarioService) Delete(id uint) (models.ComentarioTotals, error) {
	if err := s.comentarioRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ComentarioTotals{}, ErrNotFound
		}
		return models.ComentarioTotals{}, fmt.Errorf("failed to delete comentario %d: %w", id, err)
	}
	return s.comentarioRepo.Totals()
}
