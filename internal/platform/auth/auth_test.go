package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, sub string, roles []string, secret []byte) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: roles,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func invoke(mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	err := mw(func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, captured, err
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	token := signToken(t, "user-1", []string{"physician"}, testSecret)

	_, c, err := invoke(Middleware(testSecret), "Bearer "+token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := c.Request().Context()
	if got := UserIDFromContext(ctx); got != "user-1" {
		t.Errorf("user id = %q, want user-1", got)
	}
	if !HasRole(ctx, "physician") {
		t.Error("physician role not carried into context")
	}
	if HasRole(ctx, "admin") {
		t.Error("unexpected admin role")
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	_, _, err := invoke(Middleware(testSecret), "")
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
}

func TestMiddlewareRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "user-1", nil, []byte("other-secret"))

	_, _, err := invoke(Middleware(testSecret), "Bearer "+token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	_, _, err = invoke(Middleware(testSecret), "Bearer "+token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
}

func TestMiddlewareRejectsTokenWithoutSubject(t *testing.T) {
	token := signToken(t, "", []string{"nurse"}, testSecret)

	_, _, err := invoke(Middleware(testSecret), "Bearer "+token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
}

func TestRequireRole(t *testing.T) {
	token := signToken(t, "user-1", []string{"nurse"}, testSecret)

	chain := func(roles ...string) echo.MiddlewareFunc {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return Middleware(testSecret)(RequireRole(roles...)(next))
		}
	}

	if _, _, err := invoke(chain("nurse", "admin"), "Bearer "+token); err != nil {
		t.Errorf("nurse rejected from nurse route: %v", err)
	}

	_, _, err := invoke(chain("physician"), "Bearer "+token)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("err = %v, want 403", err)
	}
}

func TestDevMiddlewareInjectsAdmin(t *testing.T) {
	_, c, err := invoke(DevMiddleware(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := c.Request().Context()
	if UserIDFromContext(ctx) == "" {
		t.Error("no user injected")
	}
	if !HasRole(ctx, "admin") {
		t.Error("dev actor lacks admin role")
	}
}
