// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package access

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gamemakerclub/api-core/core/store"
)

func TestMain(m *testing.M) {
	PasswordCost = bcrypt.MinCost
	code := m.Run()
	os.Exit(code)
}

type lookupFunc func(ctx context.Context, email string) (*store.User, error)

func (f lookupFunc) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	return f(ctx, email)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)
	assert.True(t, CheckPassword(hash, "secret"))
	assert.False(t, CheckPassword(hash, "Secret"))
	assert.False(t, CheckPassword("not a hash", "secret"))

	_, err = HashPassword(strings.Repeat("p", MaxPasswordBytes))
	assert.NoError(t, err)
	_, err = HashPassword(strings.Repeat("p", MaxPasswordBytes+1))
	assert.Equal(t, ErrPasswordTooLong, err)
	// the limit is in bytes, not characters
	_, err = HashPassword(strings.Repeat("ä", 40))
	assert.Equal(t, ErrPasswordTooLong, err)
}

func TestToken(t *testing.T) {
	secret := []byte("s3cr3t")
	user := &store.User{ID: uuid.New(), Email: "james@gamemaker.club"}

	token, err := IssueToken(secret, user, time.Hour, time.Now())
	require.NoError(t, err)

	auth, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, auth.UserID)
	assert.Equal(t, user.Email, auth.Email)
	assert.Equal(t, MethodBearer, auth.Method)

	_, err = ParseToken([]byte("other"), token)
	assert.Error(t, err)

	expired, err := IssueToken(secret, user, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = ParseToken(secret, expired)
	assert.Error(t, err)

	_, err = IssueToken(nil, user, time.Hour, time.Now())
	assert.Equal(t, ErrNoSecret, err)

	// tokens of other issuers are rejected, even with the right secret
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone.else",
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = ParseToken(secret, foreign)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	user := &store.User{ID: uuid.New(), Email: "james@gamemaker.club", PasswordHash: hash}
	lookups := 0
	users := lookupFunc(func(ctx context.Context, email string) (*store.User, error) {
		lookups++
		if email == user.Email {
			return user, nil
		}
		return nil, store.ErrNotFound
	})
	secret := []byte("s3cr3t")

	router := mux.NewRouter()
	router.Use(NewMiddleware(&MiddlewareBuilder{Users: users, JWTSecret: secret}))
	var seen *Authorization
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		seen = AuthorizationFromContext(r.Context())
	})

	serve := func(set func(r *http.Request)) int {
		seen = nil
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		set(r)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, r)
		return rec.Code
	}

	// no credentials pass through
	assert.Equal(t, http.StatusOK, serve(func(r *http.Request) {}))
	assert.Nil(t, seen)

	assert.Equal(t, http.StatusOK, serve(func(r *http.Request) { r.SetBasicAuth(user.Email, "secret") }))
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.UserID)
	assert.Equal(t, MethodBasic, seen.Method)

	// verified credentials are cached
	assert.Equal(t, http.StatusOK, serve(func(r *http.Request) { r.SetBasicAuth(user.Email, "secret") }))
	assert.Equal(t, 1, lookups)

	assert.Equal(t, http.StatusUnauthorized, serve(func(r *http.Request) { r.SetBasicAuth(user.Email, "wrong") }))
	assert.Equal(t, http.StatusUnauthorized, serve(func(r *http.Request) { r.SetBasicAuth("nobody@gamemaker.club", "secret") }))
	assert.Nil(t, seen)

	token, err := IssueToken(secret, user, time.Hour, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }))
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.UserID)

	assert.Equal(t, http.StatusUnauthorized, serve(func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") }))
	assert.Equal(t, http.StatusUnauthorized, serve(func(r *http.Request) { r.Header.Set("Authorization", "Digest x") }))
}

func TestAuthorizationCache(t *testing.T) {
	cache := NewAuthorizationCache()
	userID := uuid.New()
	cache.Write("a", &Authorization{UserID: userID})
	cache.Write("b", &Authorization{UserID: userID})
	cache.Write("c", &Authorization{UserID: uuid.New()})
	assert.NotNil(t, cache.Read("a"))

	cache.Invalidate(userID)
	assert.Nil(t, cache.Read("a"))
	assert.Nil(t, cache.Read("b"))
	assert.NotNil(t, cache.Read("c"))
}
