package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager() *JWTManager {
	return NewJWTManager("test-secret-key", 24*time.Hour, 8*time.Hour)
}

func TestGenerateAndValidatePlayerToken(t *testing.T) {
	mgr := newTestJWTManager()
	playerID := uuid.New()

	token, err := mgr.GenerateToken(RealmPlayer, playerID, "alice", "")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := mgr.ValidateTokenForRealm(token, RealmPlayer)
	require.NoError(t, err)
	assert.Equal(t, playerID.String(), claims.Subject)
	assert.Equal(t, RealmPlayer, claims.Realm)
	assert.Equal(t, "alice", claims.Name)
}

func TestGenerateAndValidateAdminToken(t *testing.T) {
	mgr := newTestJWTManager()
	adminID := uuid.New()

	token, err := mgr.GenerateToken(RealmAdmin, adminID, "", RoleOperator)
	require.NoError(t, err)

	claims, err := mgr.ValidateTokenForRealm(token, RealmAdmin)
	require.NoError(t, err)
	assert.Equal(t, RealmAdmin, claims.Realm)
	assert.Equal(t, RoleOperator, claims.Role)
}

func TestUnknownRealmRejected(t *testing.T) {
	_, err := newTestJWTManager().GenerateToken(Realm("affiliate"), uuid.New(), "", "")
	assert.Error(t, err)
}

func TestRealmMismatchRejected(t *testing.T) {
	mgr := newTestJWTManager()
	playerID := uuid.New()

	token, err := mgr.GenerateToken(RealmPlayer, playerID, "", "")
	require.NoError(t, err)

	_, err = mgr.ValidateTokenForRealm(token, RealmAdmin)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected realm admin")
}

func TestInvalidSecretRejected(t *testing.T) {
	mgr1 := NewJWTManager("secret-1", 24*time.Hour, 8*time.Hour)
	mgr2 := NewJWTManager("secret-2", 24*time.Hour, 8*time.Hour)

	token, err := mgr1.GenerateToken(RealmPlayer, uuid.New(), "", "")
	require.NoError(t, err)

	_, err = mgr2.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	// Expired by more than the clock leeway.
	mgr := NewJWTManager("secret", -time.Minute, -time.Minute)

	token, err := mgr.GenerateToken(RealmPlayer, uuid.New(), "", "")
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestForeignIssuerRejected(t *testing.T) {
	mgr := newTestJWTManager()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   uuid.New().String(),
			Audience:  jwt.ClaimStrings{string(RealmPlayer)},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Realm: RealmPlayer,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(mgr.secret)
	require.NoError(t, err)

	_, err = mgr.ValidateTokenForRealm(token, RealmPlayer)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestAudienceMustMatchRealm(t *testing.T) {
	mgr := newTestJWTManager()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   uuid.New().String(),
			Audience:  jwt.ClaimStrings{string(RealmPlayer)},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Realm: RealmAdmin,
		Role:  RoleOperator,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(mgr.secret)
	require.NoError(t, err)

	_, err = mgr.ValidateTokenForRealm(token, RealmAdmin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not issued for realm admin")
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleViewer))
	assert.True(t, ValidRole(RoleOperator))
	assert.False(t, ValidRole("superadmin"))
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Write([]byte(sub.String()))
}

func TestAuthenticatePlayer(t *testing.T) {
	mgr := newTestJWTManager()
	playerID := uuid.New()
	playerToken, err := mgr.GenerateToken(RealmPlayer, playerID, "alice", "")
	require.NoError(t, err)
	adminToken, err := mgr.GenerateToken(RealmAdmin, uuid.New(), "", RoleOperator)
	require.NoError(t, err)

	h := AuthenticatePlayer(mgr)(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid player token", "Bearer " + playerToken, http.StatusOK},
		{"lowercase scheme", "bearer " + playerToken, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + playerToken, http.StatusUnauthorized},
		{"admin token", "Bearer " + adminToken, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, playerID.String(), rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)
			}
		})
	}
}

func TestAuthenticatePlayer_WebsocketQueryToken(t *testing.T) {
	mgr := newTestJWTManager()
	token, err := mgr.GenerateToken(RealmPlayer, uuid.New(), "alice", "")
	require.NoError(t, err)
	h := AuthenticatePlayer(mgr)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/live?access_token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The query parameter is ignored on plain requests.
	req = httptest.NewRequest(http.MethodGet, "/live?access_token="+token, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	mgr := newTestJWTManager()
	h := AuthenticateAdmin(mgr)(RequireRole(WriteRoles()...)(http.HandlerFunc(okHandler)))

	for _, tc := range []struct {
		role   string
		status int
	}{
		{RoleOperator, http.StatusOK},
		{RoleViewer, http.StatusForbidden},
	} {
		token, err := mgr.GenerateToken(RealmAdmin, uuid.New(), "", tc.role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/admin/games", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.status, rec.Code, "role %s", tc.role)
	}
}
