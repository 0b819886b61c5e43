package tests

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/atharavsawant52/NeoRide/internal/auth"
	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/middleware"
)

const testJWTSecret = "test-jwt-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signClaims(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

// tokenFor issues a valid token the way the account service does.
func tokenFor(t *testing.T, id, userType string) string {
	return signClaims(t, jwt.SigningMethodHS256, testJWTSecret, jwt.MapClaims{
		"id":       id,
		"userType": userType,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
}

func TestVerifier_MapsUserTypes(t *testing.T) {
	t.Parallel()

	verifier := auth.NewVerifier(testJWTSecret)

	testCases := []struct {
		userType string
		want     domain.ActorType
	}{
		{"user", domain.ActorRider},
		{"rider", domain.ActorRider},
		{"captain", domain.ActorDriver},
		{"driver", domain.ActorDriver},
	}

	for _, tc := range testCases {
		t.Run(tc.userType, func(t *testing.T) {
			actor, err := verifier.Verify(tokenFor(t, "abc", tc.userType))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if actor.ID != "abc" || actor.Type != tc.want {
				t.Errorf("expected %s:abc, got %s", tc.want, actor)
			}
		})
	}
}

func TestVerifier_FallsBackToSubject(t *testing.T) {
	t.Parallel()

	token := signClaims(t, jwt.SigningMethodHS256, testJWTSecret, jwt.MapClaims{
		"sub":      "captain-7",
		"userType": "captain",
	})

	actor, err := auth.NewVerifier(testJWTSecret).Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actor != (domain.Actor{ID: "captain-7", Type: domain.ActorDriver}) {
		t.Errorf("unexpected actor %s", actor)
	}
}

func TestVerifier_RejectsBadTokens(t *testing.T) {
	t.Parallel()

	verifier := auth.NewVerifier(testJWTSecret)

	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", signClaims(t, jwt.SigningMethodHS256, "other-secret", jwt.MapClaims{"id": "a", "userType": "user"})},
		{"expired", signClaims(t, jwt.SigningMethodHS256, testJWTSecret, jwt.MapClaims{
			"id": "a", "userType": "user", "exp": time.Now().Add(-time.Minute).Unix(),
		})},
		{"unknown user type", signClaims(t, jwt.SigningMethodHS256, testJWTSecret, jwt.MapClaims{"id": "a", "userType": "admin"})},
		{"missing id", signClaims(t, jwt.SigningMethodHS256, testJWTSecret, jwt.MapClaims{"userType": "user"})},
		{"other algorithm", signClaims(t, jwt.SigningMethodHS512, testJWTSecret, jwt.MapClaims{"id": "a", "userType": "user"})},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := verifier.Verify(tc.token); !errors.Is(err, auth.ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}

	if _, err := auth.NewVerifier("").Verify(tokenFor(t, "a", "user")); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("a verifier without a secret must reject everything, got %v", err)
	}
}

func TestRequireActor(t *testing.T) {
	t.Parallel()

	router := gin.New()
	verifier := auth.NewVerifier(testJWTSecret)
	whoami := func(c *gin.Context) {
		actor, ok := middleware.ActorFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, actor.String())
	}
	router.GET("/any", middleware.RequireActor(verifier), whoami)
	router.GET("/drivers", middleware.RequireActor(verifier, domain.ActorDriver), whoami)

	testCases := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{"no credentials", "/any", "", http.StatusUnauthorized, ""},
		{"invalid token", "/any", "Bearer nope", http.StatusUnauthorized, ""},
		{"rider on open route", "/any", "Bearer " + tokenFor(t, "r1", "user"), http.StatusOK, "rider:r1"},
		{"rider on driver route", "/drivers", "Bearer " + tokenFor(t, "r1", "user"), http.StatusForbidden, ""},
		{"driver on driver route", "/drivers", "Bearer " + tokenFor(t, "d1", "captain"), http.StatusOK, "driver:d1"},
		{"query token", "/any?token=" + tokenFor(t, "d2", "captain"), "", http.StatusOK, "driver:d2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Errorf("expected %d, got %d (%s)", tc.wantCode, w.Code, w.Body.String())
			}
			if tc.wantBody != "" && w.Body.String() != tc.wantBody {
				t.Errorf("expected body %q, got %q", tc.wantBody, w.Body.String())
			}
		})
	}
}
