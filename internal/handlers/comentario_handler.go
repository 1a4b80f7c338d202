package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"littlenails/internal/middleware"
	"littlenails/internal/services"
)

// ComentarioHandler handles HTTP requests for visitor comments and their
// moderation.
type ComentarioHandler struct {
	service *services.ComentarioService
}

// NewComentarioHandler creates a new ComentarioHandler.
func NewComentarioHandler(service *services.ComentarioService) *ComentarioHandler {
	return &ComentarioHandler{service: service}
}

// RegisterRoutes registers the public intake route and the admin moderation
// routes.
func (h *ComentarioHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/comentarios", h.HandleSubmit)

	admin := router.Group("/admin", middleware.RequireAuth, middleware.RequireAdmin)
	admin.Get("/comentarios", h.HandleList)
	admin.Patch("/comentarios/:id/marcar", h.HandleMarcar)
	admin.Delete("/comentarios/:id", h.HandleEliminar)
	admin.Put("/comentarios/:id/respuesta", h.HandleResponder)
}

// ComentarioRequest is the public comment payload.
type ComentarioRequest struct {
	Nombre  string `json:"nombre"`
	Email   string `json:"email"`
	Mensaje string `json:"mensaje"`
}

// HandleSubmit stores a visitor comment. No authentication required.
func (h *ComentarioHandler) HandleSubmit(c *fiber.Ctx) error {
	var req ComentarioRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("comentarios: bad body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Faltan campos"})
	}

	if _, err := h.service.Submit(req.Nombre, req.Email, req.Mensaje); err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Faltan campos"})
		}
		log.Printf("comentarios submit error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo guardar el comentario"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

// HandleList searches/lists comments with the read/unread totals.
func (h *ComentarioHandler) HandleList(c *fiber.Ctx) error {
	items, totals, err := h.service.Search(c.Query("search"))
	if err != nil {
		log.Printf("comentarios list error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo obtener comentarios"})
	}
	return c.JSON(fiber.Map{"items": items, "totals": totals})
}

// HandleMarcar marks one comment as read.
func (h *ComentarioHandler) HandleMarcar(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Comentario no encontrado"})
	}

	totals, err := h.service.MarkRead(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Comentario no encontrado"})
		}
		log.Printf("comentarios marcar error for %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo marcar el comentario"})
	}
	return c.JSON(fiber.Map{"ok": true, "totals": totals})
}

// HandleEliminar hard-deletes one comment.
func (h *ComentarioHandler) HandleEliminar(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Comentario no encontrado"})
	}

	totals, err := h.service.Delete(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Comentario no encontrado"})
		}
		log.Printf("comentarios eliminar error for %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo eliminar el comentario"})
	}
	return c.JSON(fiber.Map{"ok": true, "totals": totals})
}

// RespuestaRequest is the admin reply payload.
type RespuestaRequest struct {
	Respuesta string `json:"respuesta"`
}

// HandleResponder sets the admin reply on one comment.
func (h *ComentarioHandler) HandleResponder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Comentario no encontrado"})
	}

	var req RespuestaRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("comentarios responder: bad body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cuerpo de la petición inválido"})
	}

	comentario, totals, err := h.service.SetReply(uint(id), req.Respuesta)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Comentario no encontrado"})
		}
		log.Printf("comentarios responder error for %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo guardar la respuesta"})
	}
	return c.JSON(fiber.Map{"ok": true, "comentario": comentario, "totals": totals})
}
