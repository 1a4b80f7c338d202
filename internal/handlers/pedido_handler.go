package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"littlenails/internal/middleware"
	"littlenails/internal/services"
)

// PedidoHandler handles HTTP requests for orders.
type PedidoHandler struct {
	service *services.PedidoService
}

// NewPedidoHandler creates a new PedidoHandler.
func NewPedidoHandler(service *services.PedidoService) *PedidoHandler {
	return &PedidoHandler{service: service}
}

// RegisterRoutes registers the order routes. Route names come from the
// storefront frontend and are kept as-is.
func (h *PedidoHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/guardar-usuario", h.HandleSubmit)
	router.Get("/mis-pedidos", middleware.RequireAuth, h.HandleMisPedidos)
	router.Get("/usuarios", middleware.RequireAuth, middleware.RequireAdmin, h.HandleListAll)
	router.Put("/usuarios/:id", middleware.RequireAuth, middleware.RequireAdmin, h.HandleUpdate)
	router.Delete("/usuarios/:id", middleware.RequireAuth, middleware.RequireAdmin, h.HandleDelete)
}

// HandleSubmit stores an order submission, from a guest or a logged-in user.
func (h *PedidoHandler) HandleSubmit(c *fiber.Ctx) error {
	var input services.PedidoInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("guardar-usuario: bad body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []string{"Cuerpo de la petición inválido"},
		})
	}

	pedido, err := h.service.Submit(input, middleware.SessionFrom(c))
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": verr.Errors})
		}
		log.Printf("guardar-usuario error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error al guardar los datos"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":         true,
		"id":         pedido.ID,
		"created_at": pedido.CreatedAt,
	})
}

// HandleMisPedidos lists the current user's orders, including guest orders
// placed under the same email.
func (h *PedidoHandler) HandleMisPedidos(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	pedidos, err := h.service.ListForUser(sess.UserID, sess.Email)
	if err != nil {
		log.Printf("mis-pedidos error for %s: %v", sess.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudieron obtener los pedidos"})
	}
	return c.JSON(pedidos)
}

// HandleListAll lists every order for the admin panel.
func (h *PedidoHandler) HandleListAll(c *fiber.Ctx) error {
	pedidos, err := h.service.ListAll()
	if err != nil {
		log.Printf("usuarios list error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error al obtener usuarios"})
	}
	return c.JSON(pedidos)
}

// HandleUpdate applies a partial update to one order.
func (h *PedidoHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No encontrado"})
	}

	var patch services.PedidoPatch
	if err := c.BodyParser(&patch); err != nil {
		log.Printf("usuarios update: bad body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []string{"Cuerpo de la petición inválido"},
		})
	}

	pedido, err := h.service.Update(uint(id), patch)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": verr.Errors})
		case errors.Is(err, services.ErrEmptyUpdate):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No hay campos para actualizar"})
		case errors.Is(err, services.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No encontrado"})
		default:
			log.Printf("usuarios update error for %d: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo actualizar"})
		}
	}
	return c.JSON(pedido)
}

// HandleDelete hard-deletes one order.
func (h *PedidoHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No encontrado"})
	}

	if err := h.service.Delete(uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No encontrado"})
		}
		log.Printf("usuarios delete error for %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo eliminar"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
