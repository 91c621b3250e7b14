package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/wanderly/agency-api/internal/auth"
	"github.com/wanderly/agency-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-signing-key-at-least-32-chars"

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		Issuer:      "https://auth.example.com",
		Audience:    "agency-api",
		SigningKey:  testSigningKey,
		AgencyClaim: "agency_id",
		RolesClaim:  "roles",
	}
}

func signToken(t *testing.T, key string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func baseClaims(agencyID uuid.UUID) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":       "user-123",
		"name":      "Kari Nordmann",
		"email":     "kari@example.com",
		"iss":       "https://auth.example.com",
		"aud":       "agency-api",
		"exp":       time.Now().Add(time.Hour).Unix(),
		"iat":       time.Now().Unix(),
		"agency_id": agencyID.String(),
		"roles":     []string{"Agent", "Finance"},
	}
}

func TestJWTValidator_ValidToken(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())
	agencyID := uuid.New()

	tokenString := signToken(t, testSigningKey, baseClaims(agencyID))

	userCtx, err := validator.ValidateToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "user-123", userCtx.UserID)
	assert.Equal(t, "Kari Nordmann", userCtx.DisplayName)
	assert.Equal(t, "kari@example.com", userCtx.Email)
	assert.Equal(t, agencyID, userCtx.AgencyID)
	// Roles are normalized to lower case
	assert.ElementsMatch(t, []auth.Role{auth.RoleAgent, auth.RoleFinance}, userCtx.Roles)
}

func TestJWTValidator_ExpiredToken(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())

	claims := baseClaims(uuid.New())
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	tokenString := signToken(t, testSigningKey, claims)

	_, err := validator.ValidateToken(tokenString)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestJWTValidator_WrongSigningKey(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())

	tokenString := signToken(t, "some-other-key-that-is-long-enough", baseClaims(uuid.New()))

	_, err := validator.ValidateToken(tokenString)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_WrongIssuer(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())

	claims := baseClaims(uuid.New())
	claims["iss"] = "https://evil.example.com"
	tokenString := signToken(t, testSigningKey, claims)

	_, err := validator.ValidateToken(tokenString)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_WrongAudience(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())

	claims := baseClaims(uuid.New())
	claims["aud"] = "some-other-api"
	tokenString := signToken(t, testSigningKey, claims)

	_, err := validator.ValidateToken(tokenString)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_MissingAgencyClaim(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())

	claims := baseClaims(uuid.New())
	delete(claims, "agency_id")
	tokenString := signToken(t, testSigningKey, claims)

	_, err := validator.ValidateToken(tokenString)
	assert.ErrorIs(t, err, auth.ErrMissingAgency)
}

func TestJWTValidator_MalformedAgencyClaim(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())

	claims := baseClaims(uuid.New())
	claims["agency_id"] = "not-a-uuid"
	tokenString := signToken(t, testSigningKey, claims)

	_, err := validator.ValidateToken(tokenString)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_SpaceSeparatedRoles(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())

	claims := baseClaims(uuid.New())
	claims["roles"] = "admin viewer"
	tokenString := signToken(t, testSigningKey, claims)

	userCtx, err := validator.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.ElementsMatch(t, []auth.Role{auth.RoleAdmin, auth.RoleViewer}, userCtx.Roles)
}

func TestJWTValidator_NoRolesDefaultsToViewer(t *testing.T) {
	validator := auth.NewJWTValidator(testAuthConfig())

	claims := baseClaims(uuid.New())
	delete(claims, "roles")
	tokenString := signToken(t, testSigningKey, claims)

	userCtx, err := validator.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, []auth.Role{auth.RoleViewer}, userCtx.Roles)
}

func TestUserContext_Permissions(t *testing.T) {
	tests := []struct {
		name       string
		roles      []auth.Role
		canWrite   bool
		canFinance bool
	}{
		{"admin", []auth.Role{auth.RoleAdmin}, true, true},
		{"agent", []auth.Role{auth.RoleAgent}, true, false},
		{"finance", []auth.Role{auth.RoleFinance}, true, true},
		{"viewer", []auth.Role{auth.RoleViewer}, false, false},
		{"agent and finance", []auth.Role{auth.RoleAgent, auth.RoleFinance}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &auth.UserContext{Roles: tt.roles}
			assert.Equal(t, tt.canWrite, user.CanWrite())
			assert.Equal(t, tt.canFinance, user.CanManageFinance())
		})
	}
}
