package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubHandlers struct{}

func (stubHandlers) Register(c *gin.Context)                { c.Status(http.StatusCreated) }
func (stubHandlers) Login(c *gin.Context)                   { c.Status(http.StatusOK) }
func (stubHandlers) SeverGuardianAccess(c *gin.Context)     { c.Status(http.StatusOK) }
func (stubHandlers) DisableLocationFeatures(c *gin.Context) { c.Status(http.StatusOK) }
func (stubHandlers) UnenrollDevices(c *gin.Context)         { c.Status(http.StatusOK) }
func (stubHandlers) GrantLegalParentAccess(c *gin.Context)  { c.Status(http.StatusOK) }
func (stubHandlers) DenyLegalParentPetition(c *gin.Context) { c.Status(http.StatusOK) }
func (stubHandlers) ListSealed(c *gin.Context)              { c.Status(http.StatusOK) }
func (stubHandlers) GetTicket(c *gin.Context)               { c.Status(http.StatusOK) }
func (stubHandlers) SetVerificationCheck(c *gin.Context)    { c.Status(http.StatusOK) }
func (stubHandlers) GetFamily(c *gin.Context)               { c.Status(http.StatusOK) }

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	stubs := stubHandlers{}
	return NewServer(Deps{
		JWTSecret:     []byte("test-secret"),
		AuthHandler:   stubs,
		EscapeHandler: stubs,
		SealedHandler: stubs,
		TicketHandler: stubs,
		FamilyHandler: stubs,
	}, zap.NewNop())
}

func TestPing(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/safety/actions/sever"},
		{http.MethodPost, "/api/safety/actions/disable-location"},
		{http.MethodPost, "/api/safety/actions/unenroll-devices"},
		{http.MethodPost, "/api/safety/actions/grant-legal-parent"},
		{http.MethodPost, "/api/safety/actions/deny-petition"},
		{http.MethodGet, "/api/safety/tickets/T1"},
		{http.MethodPut, "/api/safety/tickets/T1/verification"},
		{http.MethodGet, "/api/safety/families/F1"},
		{http.MethodPost, "/api/safety/sealed-audit/list"},
	}
	for _, r := range routes {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(r.method, r.path, nil)
		srv.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
	}
}

func TestAuthRoutesAreOpen(t *testing.T) {
	srv := newTestServer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}
