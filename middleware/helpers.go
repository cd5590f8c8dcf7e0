package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Dosada05/academy-system/models"
	"github.com/golang-jwt/jwt/v4"
)

// JWT claim names
const (
	jwtClaimUserID    = "user_id"
	jwtClaimAcademyID = "academy_id"
	jwtClaimRole      = "role"
)

var errNoClaims = errors.New("user claims not found in context or invalid type")

// WithClaims returns a context carrying the given claims. Handlers under test
// use it instead of minting a token.
func WithClaims(ctx context.Context, userID, academyID int, role models.UserRole) context.Context {
	return context.WithValue(ctx, userContextKey, jwt.MapClaims{
		jwtClaimUserID:    float64(userID),
		jwtClaimAcademyID: float64(academyID),
		jwtClaimRole:      string(role),
	})
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	return positiveIntClaim(ctx, jwtClaimUserID)
}

// GetAcademyIDFromContext returns the academy every request is scoped to.
func GetAcademyIDFromContext(ctx context.Context) (int, error) {
	return positiveIntClaim(ctx, jwtClaimAcademyID)
}

func GetUserRoleFromContext(ctx context.Context) (models.UserRole, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errNoClaims
	}

	roleClaim, ok := claims[jwtClaimRole]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", jwtClaimRole)
	}

	roleStr, ok := roleClaim.(string)
	if !ok {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", jwtClaimRole, roleClaim)
	}

	role := models.UserRole(roleStr)
	if !role.Valid() {
		return "", fmt.Errorf("invalid role value in claim: %q", roleStr)
	}
	return role, nil
}

// JSON numbers decode as float64; older tokens may carry ids as strings.
func positiveIntClaim(ctx context.Context, name string) (int, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return 0, errNoClaims
	}

	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim in token", name)
	}

	var id int
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("'%s' claim is not an integer: %f", name, v)
		}
		id = int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid '%s' claim: %w", name, err)
		}
		id = n
	default:
		return 0, fmt.Errorf("invalid type for '%s' claim: expected float64 or string, got %T", name, raw)
	}

	if id <= 0 {
		return 0, fmt.Errorf("invalid value in '%s' claim: %d", name, id)
	}
	return id, nil
}
