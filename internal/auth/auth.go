package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Admin role tiers, ordered. Every mutation and financial read names
// the minimum tier it needs.
const (
	RoleViewer     = "viewer"
	RoleManager    = "manager"
	RoleSuperadmin = "superadmin"
)

var roleRank = map[string]int{
	RoleViewer:     1,
	RoleManager:    2,
	RoleSuperadmin: 3,
}

// HasAtLeast reports whether role meets the minimum tier.
func HasAtLeast(role, min string) bool {
	return roleRank[role] >= roleRank[min]
}

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// Verifier validates bearer JWTs signed with the shared admin secret
// and yields the caller's role. It is the whole identity layer this
// service knows about.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// ExtractTokenFromRequest pulls the bearer token out of the
// Authorization header.
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}
	return parts[1], nil
}

// Claims verified out of an admin token.
type Claims struct {
	UserID string
	Role   string
}

func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("auth secret not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("subject claim not found in token")
	}
	role, _ := claims["role"].(string)
	if _, known := roleRank[role]; !known {
		role = RoleViewer
	}

	return &Claims{UserID: sub, Role: role}, nil
}

// Middleware verifies the bearer token before any data is touched and
// rejects callers below minRole.
func (v *Verifier) Middleware(minRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, "Authorization required: "+err.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := v.Verify(tokenString)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			if !HasAtLeast(claims.Role, minRole) {
				http.Error(w, "Insufficient role", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, roleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated caller's id from the request context.
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}

// Role returns the authenticated caller's role from the request context.
func Role(ctx context.Context) string {
	if role, ok := ctx.Value(roleKey).(string); ok {
		return role
	}
	return ""
}
