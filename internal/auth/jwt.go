package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/config"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrMissingAgency = errors.New("token missing agency claim")
)

// JWTValidator validates bearer tokens issued by the hosted auth provider.
// Tokens are HS256-signed with a shared key distributed through the vault.
type JWTValidator struct {
	config *config.AuthConfig
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{config: cfg}
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.config.SigningKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}

	if v.config.Issuer != "" {
		iss, _ := claims.GetIssuer()
		if iss != v.config.Issuer {
			return nil, fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
		}
	}

	if v.config.Audience != "" {
		aud, _ := claims.GetAudience()
		validAud := false
		for _, a := range aud {
			if a == v.config.Audience {
				validAud = true
				break
			}
		}
		if !validAud {
			return nil, fmt.Errorf("%w: invalid audience", ErrInvalidToken)
		}
	}

	userCtx := &UserContext{
		UserID:      extractString(claims, "sub", "oid"),
		DisplayName: extractString(claims, "name", "preferred_username"),
		Email:       extractString(claims, "email", "upn"),
		Roles:       extractRoles(claims, v.config.RolesClaim),
	}

	// Every token must carry the agency it belongs to; data access is
	// scoped by it
	agencyStr, ok := claims[v.config.AgencyClaim].(string)
	if !ok || agencyStr == "" {
		return nil, ErrMissingAgency
	}
	agencyID, err := uuid.Parse(agencyStr)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed agency claim", ErrInvalidToken)
	}
	userCtx.AgencyID = agencyID

	if len(userCtx.Roles) == 0 {
		userCtx.Roles = []Role{RoleViewer}
	}

	return userCtx, nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if str, ok := val.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}

func extractRoles(claims jwt.MapClaims, claimName string) []Role {
	roles := []Role{}

	val, ok := claims[claimName]
	if !ok {
		return roles
	}

	switch v := val.(type) {
	case []interface{}:
		for _, r := range v {
			if str, ok := r.(string); ok {
				roles = append(roles, Role(strings.ToLower(str)))
			}
		}
	case []string:
		for _, str := range v {
			roles = append(roles, Role(strings.ToLower(str)))
		}
	case string:
		for _, str := range strings.Split(v, " ") {
			if str != "" {
				roles = append(roles, Role(strings.ToLower(str)))
			}
		}
	}

	return roles
}
