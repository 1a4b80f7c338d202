package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"littlenails/internal/models"
	"littlenails/internal/repositories"
	"littlenails/internal/sessions"
)

// EventPublisher publishes domain events; pkg/rabbitmq implements it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// PedidoService handles order submissions and the admin-side order CRUD.
type PedidoService struct {
	pedidoRepo repositories.PedidoRepository
	userRepo   repositories.UserRepository
	validate   *validator.Validate
	events     EventPublisher
}

// NewPedidoService creates a new PedidoService. events may be nil, in which
// case submissions simply skip event publication.
func NewPedidoService(pedidoRepo repositories.PedidoRepository, userRepo repositories.UserRepository, events EventPublisher) *PedidoService {
	return &PedidoService{
		pedidoRepo: pedidoRepo,
		userRepo:   userRepo,
		validate:   validator.New(),
		events:     events,
	}
}

// PedidoInput is the order submission payload. Field names match the
// storefront form.
type PedidoInput struct {
	Nombre          string `json:"nombre"`
	ApellidoPaterno string `json:"apellidoPaterno"`
	ApellidoMaterno string `json:"apellidoMaterno"`
	Email           string `json:"email"`
	Telefono        string `json:"telefono"`
	Estado          string `json:"estado"`
	CodigoPostal    string `json:"codigoPostal"`
	ResumenPedido   string `json:"resumenPedido"`
}

// pedidoDatos is the merged (payload + profile backfill) order, validated as
// a whole so the caller gets every problem at once.
type pedidoDatos struct {
	Nombre          string `validate:"required"`
	ApellidoPaterno string `validate:"required"`
	ApellidoMaterno string `validate:"required"`
	Email           string `validate:"required,email"`
	Telefono        string `validate:"required,number,len=10"`
	Estado          string `validate:"required"`
	CodigoPostal    string `validate:"required,number,len=5"`
}

var pedidoMessages = map[string]string{
	"Nombre":          "Nombre requerido",
	"ApellidoPaterno": "Apellido paterno requerido",
	"ApellidoMaterno": "Apellido materno requerido",
	"Email":           "Correo inválido",
	"Telefono":        "Teléfono inválido",
	"Estado":          "Ciudad requerida",
	"CodigoPostal":    "Código postal inválido",
}

// orFrom returns the trimmed payload value, falling back to the profile
// value when the payload omits the field.
func orFrom(payload, profile string) string {
	if v := strings.TrimSpace(payload); v != "" {
		return v
	}
	return strings.TrimSpace(profile)
}

// Submit stores a new pedido. When a session is present, missing payload
// fields are backfilled from the user's profile and the pedido is linked to
// the account. Every new pedido starts pending.
func (s *PedidoService) Submit(input PedidoInput, sess *sessions.Info) (*models.Pedido, error) {
	var profile *models.User
	var usuarioID *string
	if sess != nil {
		usuarioID = &sess.UserID
		loaded, err := s.userRepo.GetByID(sess.UserID)
		if err != nil {
			log.Printf("failed to load profile for pedido backfill (user %s): %v", sess.UserID, err)
		} else {
			profile = loaded
		}
	}
	if profile == nil {
		profile = &models.User{}
	}

	datos := pedidoDatos{
		Nombre:          orFrom(input.Nombre, profile.Name),
		ApellidoPaterno: orFrom(input.ApellidoPaterno, profile.ApellidoPaterno),
		ApellidoMaterno: orFrom(input.ApellidoMaterno, profile.ApellidoMaterno),
		Email:           orFrom(input.Email, profile.Email),
		Telefono:        orFrom(input.Telefono, profile.Telefono),
		Estado:          orFrom(input.Estado, profile.Ciudad),
		CodigoPostal:    orFrom(input.CodigoPostal, profile.CodigoPostal),
	}
	if err := s.validate.Struct(datos); err != nil {
		return nil, &ValidationError{Errors: validationMessages(err, pedidoMessages)}
	}

	pedido := &models.Pedido{
		Nombre:          datos.Nombre,
		ApellidoPaterno: datos.ApellidoPaterno,
		ApellidoMaterno: datos.ApellidoMaterno,
		Email:           datos.Email,
		Telefono:        datos.Telefono,
		Estado:          datos.Estado,
		CodigoPostal:    datos.CodigoPostal,
		ResumenPedido:   strings.TrimSpace(input.ResumenPedido),
		EstadoPedido:    models.EstadoPedidoPendiente,
		UsuarioID:       usuarioID,
	}
	if err := s.pedidoRepo.Create(pedido); err != nil {
		return nil, err
	}

	s.publishCreated(pedido)
	return pedido, nil
}

// publishCreated emits a pedido.created event. Failures are logged, never
// surfaced: the pedido is already durable.
func (s *PedidoService) publishCreated(pedido *models.Pedido) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"pedidoId":     pedido.ID,
		"usuarioId":    pedido.UsuarioID,
		"estadoPedido": pedido.EstadoPedido,
	})
	if err != nil {
		log.Printf("failed to marshal pedido event: %v", err)
		return
	}
	if err := s.events.Publish("pedido.created", body); err != nil {
		log.Printf("Warning: failed to publish pedido.created for pedido %d: %v", pedido.ID, err)
	}
}

// ListForUser returns the pedidos owned by the user or submitted as a guest
// under the same email, newest first.
func (s *PedidoService) ListForUser(userID, email string) ([]models.Pedido, error) {
	return s.pedidoRepo.GetByOwnerOrEmail(userID, email)
}

// ListAll returns every pedido, newest first.
func (s *PedidoService) ListAll() ([]models.Pedido, error) {
	return s.pedidoRepo.GetAll()
}

// PedidoPatch is the partial-update payload: only present fields change.
type PedidoPatch struct {
	Nombre          *string `json:"nombre"`
	ApellidoPaterno *string `json:"apellido_paterno"`
	ApellidoMaterno *string `json:"apellido_materno"`
	Email           *string `json:"email"`
	Telefono        *string `json:"telefono"`
	Estado          *string `json:"estado"`
	CodigoPostal    *string `json:"codigo_postal"`
	ResumenPedido   *string `json:"resumen_pedido"`
	EstadoPedido    *string `json:"estado_pedido"`
}

// Update applies a partial update to one pedido. Provided fields are
// validated together; column names are fixed here, never taken from the
// caller.
func (s *PedidoService) Update(id uint, patch PedidoPatch) (*models.Pedido, error) {
	var errs []string
	columns := map[string]interface{}{}

	if patch.Nombre != nil {
		if strings.TrimSpace(*patch.Nombre) == "" {
			errs = append(errs, "El nombre es obligatorio")
		}
		columns["nombre"] = *patch.Nombre
	}
	if patch.ApellidoPaterno != nil {
		columns["apellido_paterno"] = *patch.ApellidoPaterno
	}
	if patch.ApellidoMaterno != nil {
		columns["apellido_materno"] = *patch.ApellidoMaterno
	}
	if patch.Email != nil {
		if s.validate.Var(strings.TrimSpace(*patch.Email), "required,email") != nil {
			errs = append(errs, "Correo electrónico inválido")
		}
		columns["email"] = *patch.Email
	}
	if patch.Telefono != nil {
		if v := strings.TrimSpace(*patch.Telefono); v != "" && (!onlyDigits(v) || len(v) != 10) {
			errs = append(errs, "El teléfono debe tener 10 dígitos")
		}
		columns["telefono"] = *patch.Telefono
	}
	if patch.Estado != nil {
		columns["estado"] = *patch.Estado
	}
	if patch.CodigoPostal != nil {
		if v := strings.TrimSpace(*patch.CodigoPostal); v != "" && (!onlyDigits(v) || len(v) != 5) {
			errs = append(errs, "El código postal debe tener 5 dígitos")
		}
		columns["codigo_postal"] = *patch.CodigoPostal
	}
	if patch.ResumenPedido != nil {
		columns["resumen_pedido"] = *patch.ResumenPedido
	}
	if patch.EstadoPedido != nil {
		v := strings.TrimSpace(*patch.EstadoPedido)
		if v != "" && v != models.EstadoPedidoPendiente && v != models.EstadoPedidoRealizado {
			errs = append(errs, "Estado de pedido inválido")
		}
		columns["estado_pedido"] = v
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}
	if len(columns) == 0 {
		return nil, ErrEmptyUpdate
	}

	pedido, err := s.pedidoRepo.Update(id, columns)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update pedido %d: %w", id, err)
	}
	return pedido, nil
}

// Delete hard-deletes one pedido.
func (s *PedidoService) Delete(id uint) error {
	if err := s.pedidoRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete pedido %d: %w", id, err)
	}
	return nil
}
