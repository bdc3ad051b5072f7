package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signed(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "11111111-2222-3333-4444-555555555555",
		Issuer:    "https://auth.example.com",
		Audience:  jwt.ClaimStrings{"authenticated"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func newEngine(cfg JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWTAuth(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(CtxUserID),
			"token":   c.GetString(CtxAccessToken),
		})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	cfg := JWTConfig{Secret: testSecret, Issuer: "https://auth.example.com", Audience: "authenticated"}
	good := signed(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongAud := validClaims()
	wrongAud.Audience = jwt.ClaimStrings{"anon"}
	wrongIss := validClaims()
	wrongIss.Issuer = "https://other.example.com"
	noSub := validClaims()
	noSub.Subject = ""

	tests := []struct {
		name   string
		header string
		query  string
		want   int
		msg    string
	}{
		{name: "header token", header: "Bearer " + good, want: http.StatusOK},
		{name: "query token", query: good, want: http.StatusOK},
		{name: "missing", want: http.StatusUnauthorized, msg: "missing bearer token"},
		{name: "bad signature", header: "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("nope"), validClaims()), want: http.StatusUnauthorized, msg: "invalid token"},
		{name: "wrong alg", header: "Bearer " + signed(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims()), want: http.StatusUnauthorized, msg: "invalid token"},
		{name: "expired", header: "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), expired), want: http.StatusUnauthorized, msg: "invalid token"},
		{name: "wrong audience", header: "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), wrongAud), want: http.StatusUnauthorized, msg: "invalid token audience"},
		{name: "wrong issuer", header: "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIss), want: http.StatusUnauthorized, msg: "invalid token issuer"},
		{name: "no subject", header: "Bearer " + signed(t, jwt.SigningMethodHS256, []byte(testSecret), noSub), want: http.StatusUnauthorized, msg: "missing subject"},
	}

	r := newEngine(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/me"
			if tt.query != "" {
				target += "?access_token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.want == http.StatusOK {
				assert.Equal(t, "11111111-2222-3333-4444-555555555555", body["user_id"])
				assert.Equal(t, good, body["token"])
			} else {
				assert.Equal(t, "UNAUTHORIZED", body["code"])
				assert.Equal(t, tt.msg, body["message"])
			}
		})
	}
}

func TestJWTAuth_MissingSecret(t *testing.T) {
	r := newEngine(JWTConfig{})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
