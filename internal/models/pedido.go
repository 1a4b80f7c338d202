package models

import "time"

// Order states. Every new pedido starts pending; an admin moves it to
// realizado once the work is done.
const (
	EstadoPedidoPendiente = "Pendiente por realizar"
	EstadoPedidoRealizado = "Realizado"
)

// Pedido is a customer's submitted service request. UsuarioID is nil for
// orders placed without logging in; those are later matched by email.
type Pedido struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Nombre          string    `json:"nombre"`
	ApellidoPaterno string    `json:"apellido_paterno"`
	ApellidoMaterno string    `json:"apellido_materno"`
	Email           string    `json:"email"`
	Telefono        string    `json:"telefono"`
	Estado          string    `json:"estado"`
	CodigoPostal    string    `json:"codigo_postal"`
	ResumenPedido   string    `json:"resumen_pedido"`
	EstadoPedido    string    `json:"estado_pedido"`
	UsuarioID       *string   `json:"usuario_id" gorm:"type:varchar(36)"`
	CreatedAt       time.Time `json:"created_at"`
}
