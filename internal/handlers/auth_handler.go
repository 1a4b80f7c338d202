package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"littlenails/internal/middleware"
	"littlenails/internal/services"
	"littlenails/internal/sessions"
)

// AuthHandler handles HTTP requests for accounts and sessions.
type AuthHandler struct {
	authService   *services.AuthService
	sessions      *sessions.Manager
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies toggles the Secure
// flag (and the SameSite=None it requires) on the session cookie.
func NewAuthHandler(authService *services.AuthService, manager *sessions.Manager, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		sessions:      manager,
		secureCookies: secureCookies,
	}
}

// RegisterRoutes registers the account and session routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/register", h.HandleRegister)
	router.Post("/login", h.HandleLogin)
	router.Get("/me", h.HandleMe)
	router.Post("/logout", h.HandleLogout)
	router.Get("/profile", middleware.RequireAuth, h.HandleProfile)
}

// HandleRegister creates a customer account.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("register: bad body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []string{"Cuerpo de la petición inválido"},
		})
	}

	if _, err := h.authService.Register(input); err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": verr.Errors})
		case errors.Is(err, services.ErrEmailTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "El correo ya está registrado"})
		default:
			log.Printf("register error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo registrar"})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true})
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and opens a session. Only the opaque
// token reaches the client, inside an HTTP-only cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("login: bad body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": []string{"Cuerpo de la petición inválido"},
		})
	}

	user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Credenciales inválidas"})
		}
		log.Printf("login error for %s: %v", req.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo iniciar sesión"})
	}

	token, err := h.sessions.Create(c.UserContext(), user)
	if err != nil {
		log.Printf("session create error for %s: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo iniciar sesión"})
	}
	h.setSessionCookie(c, token, time.Now().Add(h.sessions.TTL()))

	return c.JSON(fiber.Map{"ok": true, "role": user.Role})
}

// HandleMe returns the current session identity, or null.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	if sess == nil {
		return c.JSON(fiber.Map{"user": nil})
	}
	return c.JSON(fiber.Map{"user": sess})
}

// HandleLogout destroys the session. It answers ok even when there was no
// session to destroy.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	token := c.Cookies(sessions.CookieName)
	if err := h.sessions.Destroy(c.UserContext(), token); err != nil {
		log.Printf("logout: destroy failed: %v", err)
	}
	h.setSessionCookie(c, "", time.Now().Add(-time.Hour))
	return c.JSON(fiber.Map{"ok": true})
}

// HandleProfile returns the current user's profile fields.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	user, err := h.authService.Profile(sess.UserID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Usuario no encontrado"})
		}
		log.Printf("profile error for %s: %v", sess.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "No se pudo obtener el perfil"})
	}
	return c.JSON(user)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	sameSite := fiber.CookieSameSiteLaxMode
	if h.secureCookies {
		sameSite = fiber.CookieSameSiteNoneMode
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessions.CookieName,
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: sameSite,
	})
}
