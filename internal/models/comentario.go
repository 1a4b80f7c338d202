package models

import "time"

// Comentario is a visitor-submitted message, optionally answered by the
// admin. Respondido always mirrors whether RespuestaAdmin is non-empty after
// trimming; it is never set on its own.
type Comentario struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Nombre         string    `json:"nombre"`
	Email          string    `json:"email"`
	Mensaje        string    `json:"mensaje"`
	Leido          bool      `json:"leido"`
	RespuestaAdmin *string   `json:"respuesta_admin"`
	Respondido     bool      `json:"respondido"`
	CreatedAt      time.Time `json:"created_at"`
}

// ComentarioTotals is the read/unread aggregate returned alongside every
// moderation mutation so the admin UI counters stay consistent.
type ComentarioTotals struct {
	Leidos   int64 `json:"leidos"`
	NoLeidos int64 `json:"noLeidos" gorm:"column:no_leidos"`
}
