package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"littlenails/internal/handlers"
	"littlenails/internal/middleware"
	"littlenails/internal/models"
	"littlenails/internal/repositories"
	"littlenails/internal/services"
	"littlenails/internal/sessions"
)

const (
	adminEmail    = "LittleNails@gmail.com"
	adminPassword = "littlenails1"
)

// newTestApp wires the full application against an in-memory sqlite
// database, the same way main does against postgres.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Pedido{}, &models.Comentario{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	store, err := sessions.NewGormStore(db)
	if err != nil {
		t.Fatalf("failed to create session store: %v", err)
	}
	sessionManager := sessions.NewManager(store)

	userRepo := repositories.NewGORMUserRepository(db)
	authService := services.NewAuthService(userRepo)
	pedidoService := services.NewPedidoService(repositories.NewGORMPedidoRepository(db), userRepo, nil)
	comentarioService := services.NewComentarioService(repositories.NewGORMComentarioRepository(db))

	if err := authService.SeedAdmin(adminEmail, adminPassword); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	app := fiber.New()
	app.Use(middleware.Sessions(sessionManager))
	handlers.NewAuthHandler(authService, sessionManager, false).RegisterRoutes(app)
	handlers.NewPedidoHandler(pedidoService).RegisterRoutes(app)
	handlers.NewComentarioHandler(comentarioService).RegisterRoutes(app)

	return app, db
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, cookie *http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == sessions.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func login(t *testing.T, app *fiber.App, email, password string) *http.Cookie {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/login", fiber.Map{
		"email":    email,
		"password": password,
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	return sessionCookie(t, resp)
}

func registerCustomer(t *testing.T, app *fiber.App, email string) {
	t.Helper()
	resp := doRequest(t, app, http.MethodPost, "/register", fiber.Map{
		"email":           email,
		"password":        "secreta123",
		"name":            "Ana",
		"apellidoPaterno": "García",
		"apellidoMaterno": "López",
		"telefono":        "5512345678",
		"ciudad":          "Puebla",
		"codigoPostal":    "72000",
	}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRegisterLoginAndMe(t *testing.T) {
	app, _ := newTestApp(t)

	registerCustomer(t, app, "ana@example.com")
	cookie := login(t, app, "ana@example.com", "secreta123")

	// The cookie only ever carries an opaque token.
	assert.True(t, cookie.HttpOnly)

	var me struct {
		User *sessions.Info `json:"user"`
	}
	resp := doRequest(t, app, http.MethodGet, "/me", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &me)
	if assert.NotNil(t, me.User) {
		assert.Equal(t, "ana@example.com", me.User.Email)
		assert.Equal(t, models.RoleCustomer, me.User.Role)
	}

	var profile models.User
	resp = doRequest(t, app, http.MethodGet, "/profile", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &profile)
	assert.Equal(t, "5512345678", profile.Telefono)

	// Anonymous /me answers null instead of failing.
	var anonMe struct {
		User *sessions.Info `json:"user"`
	}
	resp = doRequest(t, app, http.MethodGet, "/me", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &anonMe)
	assert.Nil(t, anonMe.User)
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	app, db := newTestApp(t)

	registerCustomer(t, app, "ana@example.com")

	// Same address, different case: still one row, one conflict.
	resp := doRequest(t, app, http.MethodPost, "/register", fiber.Map{
		"email":           "ANA@Example.com",
		"password":        "secreta123",
		"apellidoPaterno": "García",
		"apellidoMaterno": "López",
		"telefono":        "5512345678",
		"ciudad":          "Puebla",
		"codigoPostal":    "72000",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var count int64
	db.Model(&models.User{}).Where("email = ?", "ana@example.com").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRegisterValidationErrorsAreBatched(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/register", fiber.Map{
		"email":    "bad",
		"password": "abc",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Errors []string `json:"errors"`
	}
	decodeBody(t, resp, &body)
	assert.Contains(t, body.Errors, "Correo inválido")
	assert.Contains(t, body.Errors, "La contraseña debe tener al menos 6 caracteres")
	assert.Contains(t, body.Errors, "Apellido paterno requerido")
}

func TestGuardStatusCodes(t *testing.T) {
	app, _ := newTestApp(t)

	// Authenticated-only route without a session: 401.
	resp := doRequest(t, app, http.MethodGet, "/mis-pedidos", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Admin route without a session and with a customer session: both 403.
	resp = doRequest(t, app, http.MethodGet, "/usuarios", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	registerCustomer(t, app, "ana@example.com")
	cookie := login(t, app, "ana@example.com", "secreta123")

	resp = doRequest(t, app, http.MethodGet, "/usuarios", nil, cookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/admin/comentarios", nil, cookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The customer session is still perfectly valid for user routes.
	resp = doRequest(t, app, http.MethodGet, "/mis-pedidos", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app, _ := newTestApp(t)

	registerCustomer(t, app, "ana@example.com")

	resp := doRequest(t, app, http.MethodPost, "/login", fiber.Map{
		"email":    "ana@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPost, "/login", fiber.Map{
		"email":    "nadie@example.com",
		"password": "secreta123",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutDestroysSession(t *testing.T) {
	app, _ := newTestApp(t)

	registerCustomer(t, app, "ana@example.com")
	cookie := login(t, app, "ana@example.com", "secreta123")

	resp := doRequest(t, app, http.MethodPost, "/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The old token no longer resolves, even though the client still has it.
	resp = doRequest(t, app, http.MethodGet, "/profile", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Logging out again with the dead cookie still answers ok.
	resp = doRequest(t, app, http.MethodPost, "/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPedidoSubmitBackfillsProfile(t *testing.T) {
	app, db := newTestApp(t)

	registerCustomer(t, app, "ana@example.com")
	cookie := login(t, app, "ana@example.com", "secreta123")

	// telefono deliberately omitted: it must come from the stored profile.
	resp := doRequest(t, app, http.MethodPost, "/guardar-usuario", fiber.Map{
		"nombre":        "Ana",
		"resumenPedido": "Manicure gel",
	}, cookie)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var pedido models.Pedido
	assert.NoError(t, db.First(&pedido).Error)
	assert.Equal(t, "5512345678", pedido.Telefono)
	assert.Equal(t, "ana@example.com", pedido.Email)
	assert.Equal(t, models.EstadoPedidoPendiente, pedido.EstadoPedido)
	assert.NotNil(t, pedido.UsuarioID)

	// The owner sees it under /mis-pedidos.
	var pedidos []models.Pedido
	resp = doRequest(t, app, http.MethodGet, "/mis-pedidos", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &pedidos)
	assert.Len(t, pedidos, 1)
}

func TestMisPedidosIncludesGuestOrdersByEmail(t *testing.T) {
	app, _ := newTestApp(t)

	// Guest order placed before the account ever existed.
	resp := doRequest(t, app, http.MethodPost, "/guardar-usuario", fiber.Map{
		"nombre":          "Ana",
		"apellidoPaterno": "García",
		"apellidoMaterno": "López",
		"email":           "ana@example.com",
		"telefono":        "5512345678",
		"estado":          "Puebla",
		"codigoPostal":    "72000",
		"resumenPedido":   "Pedicure",
	}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	registerCustomer(t, app, "ana@example.com")
	cookie := login(t, app, "ana@example.com", "secreta123")

	var pedidos []models.Pedido
	resp = doRequest(t, app, http.MethodGet, "/mis-pedidos", nil, cookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &pedidos)
	if assert.Len(t, pedidos, 1) {
		assert.Nil(t, pedidos[0].UsuarioID)
	}
}

func TestPedidoPartialUpdateTouchesOnlyProvidedFields(t *testing.T) {
	app, db := newTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/guardar-usuario", fiber.Map{
		"nombre":          "Luisa",
		"apellidoPaterno": "Martínez",
		"apellidoMaterno": "Ruiz",
		"email":           "luisa@example.com",
		"telefono":        "2221234567",
		"estado":          "Puebla",
		"codigoPostal":    "72100",
		"resumenPedido":   "Uñas acrílicas",
	}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var before models.Pedido
	assert.NoError(t, db.First(&before).Error)

	admin := login(t, app, adminEmail, adminPassword)
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/usuarios/%d", before.ID), fiber.Map{
		"estado_pedido": models.EstadoPedidoRealizado,
	}, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var after models.Pedido
	decodeBody(t, resp, &after)
	assert.Equal(t, models.EstadoPedidoRealizado, after.EstadoPedido)
	assert.Equal(t, before.Nombre, after.Nombre)
	assert.Equal(t, before.Telefono, after.Telefono)
	assert.Equal(t, before.ResumenPedido, after.ResumenPedido)
	assert.Equal(t, before.Email, after.Email)

	// Rejected transitions never reach the row.
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/usuarios/%d", before.ID), fiber.Map{
		"estado_pedido": "Enviado",
	}, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Empty patch is a 400 of its own.
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/usuarios/%d", before.ID), fiber.Map{}, admin)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPedidoAdminListAndDelete(t *testing.T) {
	app, db := newTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/guardar-usuario", fiber.Map{
		"nombre":          "Luisa",
		"apellidoPaterno": "Martínez",
		"apellidoMaterno": "Ruiz",
		"email":           "luisa@example.com",
		"telefono":        "2221234567",
		"estado":          "Puebla",
		"codigoPostal":    "72100",
	}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	admin := login(t, app, adminEmail, adminPassword)

	var pedidos []models.Pedido
	resp = doRequest(t, app, http.MethodGet, "/usuarios", nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &pedidos)
	assert.Len(t, pedidos, 1)

	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/usuarios/%d", pedidos[0].ID), nil, admin)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	var count int64
	db.Model(&models.Pedido{}).Count(&count)
	assert.Equal(t, int64(0), count)

	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/usuarios/%d", pedidos[0].ID), nil, admin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type comentariosResponse struct {
	Items  []models.Comentario     `json:"items"`
	Totals models.ComentarioTotals `json:"totals"`
}

func TestComentarioModerationScenario(t *testing.T) {
	app, _ := newTestApp(t)

	// Visitor submits a comment, no auth involved.
	resp := doRequest(t, app, http.MethodPost, "/comentarios", fiber.Map{
		"nombre":  "Ana",
		"email":   "a@x.com",
		"mensaje": "Hola",
	}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPost, "/comentarios", fiber.Map{
		"nombre": "Ana",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	admin := login(t, app, adminEmail, adminPassword)

	var list comentariosResponse
	resp = doRequest(t, app, http.MethodGet, "/admin/comentarios", nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &list)
	if assert.Len(t, list.Items, 1) {
		assert.False(t, list.Items[0].Leido)
	}
	assert.Equal(t, int64(0), list.Totals.Leidos)
	assert.Equal(t, int64(1), list.Totals.NoLeidos)
	id := list.Items[0].ID

	// Mark read: unread drops by one, read grows by one.
	var marked struct {
		Ok     bool                    `json:"ok"`
		Totals models.ComentarioTotals `json:"totals"`
	}
	resp = doRequest(t, app, http.MethodPatch, fmt.Sprintf("/admin/comentarios/%d/marcar", id), nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &marked)
	assert.Equal(t, int64(1), marked.Totals.Leidos)
	assert.Equal(t, int64(0), marked.Totals.NoLeidos)

	// Reply: respondido flips, leido stays true.
	var replied struct {
		Ok         bool                    `json:"ok"`
		Comentario models.Comentario       `json:"comentario"`
		Totals     models.ComentarioTotals `json:"totals"`
	}
	resp = doRequest(t, app, http.MethodPut, fmt.Sprintf("/admin/comentarios/%d/respuesta", id), fiber.Map{
		"respuesta": "Gracias",
	}, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &replied)
	assert.True(t, replied.Comentario.Respondido)
	assert.True(t, replied.Comentario.Leido)

	// Search finds it by reply text.
	resp = doRequest(t, app, http.MethodGet, "/admin/comentarios?search=gracias", nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &list)
	assert.Len(t, list.Items, 1)

	// Delete, then the id is gone.
	resp = doRequest(t, app, http.MethodDelete, fmt.Sprintf("/admin/comentarios/%d", id), nil, admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPatch, fmt.Sprintf("/admin/comentarios/%d/marcar", id), nil, admin)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
