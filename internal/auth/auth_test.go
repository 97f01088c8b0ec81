package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"festpass/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-admin-secret"

func signToken(t *testing.T, sub, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestVerify(t *testing.T) {
	v := auth.NewVerifier(testSecret)

	claims, err := v.Verify(signToken(t, "admin1", "manager"))
	require.NoError(t, err)
	assert.Equal(t, "admin1", claims.UserID)
	assert.Equal(t, "manager", claims.Role)
}

func TestVerifyWrongSecret(t *testing.T) {
	v := auth.NewVerifier("other-secret")

	_, err := v.Verify(signToken(t, "admin1", "manager"))
	assert.Error(t, err)
}

func TestUnknownRoleDowngradesToViewer(t *testing.T) {
	v := auth.NewVerifier(testSecret)

	claims, err := v.Verify(signToken(t, "admin1", "wizard"))
	require.NoError(t, err)
	assert.Equal(t, auth.RoleViewer, claims.Role)
}

func TestRoleTiers(t *testing.T) {
	assert.True(t, auth.HasAtLeast(auth.RoleSuperadmin, auth.RoleManager))
	assert.True(t, auth.HasAtLeast(auth.RoleManager, auth.RoleManager))
	assert.False(t, auth.HasAtLeast(auth.RoleViewer, auth.RoleManager))
	assert.False(t, auth.HasAtLeast(auth.RoleManager, auth.RoleSuperadmin))
	assert.False(t, auth.HasAtLeast("", auth.RoleViewer))
}

func TestMiddleware(t *testing.T) {
	v := auth.NewVerifier(testSecret)

	var gotUser, gotRole string
	handler := v.Middleware(auth.RoleManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = auth.UserID(r.Context())
		gotRole = auth.Role(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No header.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Insufficient role.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "v1", "viewer"))
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Sufficient role.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "m1", "manager"))
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "m1", gotUser)
	assert.Equal(t, "manager", gotRole)
}
