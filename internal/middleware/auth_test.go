package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthcare-scheduling-server/internal/apperrors"
	"healthcare-scheduling-server/internal/config"
	"healthcare-scheduling-server/internal/models"
	"healthcare-scheduling-server/internal/utils"
)

type stubResolver struct {
	doctorID string
	err      error
}

func (s stubResolver) ResolveActor(_ context.Context, actor models.Actor) (models.Actor, error) {
	if s.err != nil {
		return actor, s.err
	}
	if actor.Role == models.RoleDoctor {
		actor.DoctorID = s.doctorID
	}
	return actor, nil
}

func token(t *testing.T, userID string, role models.Role) string {
	t.Helper()
	claims := utils.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return signed
}

func newRouter(resolver ActorResolver, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: "secret"}
	router := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(cfg, resolver)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleAuthMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		actor, ok := GetActorFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, actor)
	})
	router.GET("/me", handlers...)
	return router
}

func TestAuthMiddleware_ResolvesActor(t *testing.T) {
	router := newRouter(stubResolver{doctorID: "doctor-x"})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "user-doc-x", models.RoleDoctor))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"user-doc-x","role":"doctor","doctorId":"doctor-x"}`, rec.Body.String())
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	router := newRouter(stubResolver{})

	for name, header := range map[string]string{
		"missing":   "",
		"malformed": "Token abc",
		"invalid":   "Bearer abc.def.ghi",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAuthMiddleware_ResolverFault(t *testing.T) {
	router := newRouter(stubResolver{err: apperrors.Unavailable("doctor directory unavailable", errors.New("timeout"))})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "user-doc-x", models.RoleDoctor))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRoleAuthMiddleware(t *testing.T) {
	router := newRouter(nil, models.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "patient-1", models.RolePatient))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, "admin-1", models.RoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
