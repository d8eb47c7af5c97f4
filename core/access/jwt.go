// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package access

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gamemakerclub/api-core/core/logger"
	"github.com/gamemakerclub/api-core/core/store"
)

// Issuer is the issuer of all tokens created by IssueToken
const Issuer = "gamemaker.club"

// DefaultTokenLifetime is the lifetime of issued tokens unless configured otherwise
const DefaultTokenLifetime = 24 * time.Hour

// ErrNoSecret is returned by IssueToken if no signing secret is configured
var ErrNoSecret = errors.New("no token secret configured")

// Claims are the claims of an issued token. The subject is the user ID.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssueToken returns a signed HS256 bearer token for the user
func IssueToken(secret []byte, user *store.User, lifetime time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrNoSecret
	}
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies a bearer token and returns the authorization it carries
func ParseToken(secret []byte, tokenString string) (*Authorization, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method " + token.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Issuer != Issuer {
		return nil, errors.New("invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, err
	}
	return &Authorization{UserID: userID, Email: claims.Email, Method: MethodBearer}, nil
}

// UserLookup finds users by email. It is implemented by store.Datastore.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
}

// MiddlewareBuilder is a helper builder for NewMiddleware
type MiddlewareBuilder struct {
	// Users is used to verify basic auth credentials
	Users UserLookup
	// JWTSecret is the HS256 secret for bearer tokens. Without a secret bearer
	// tokens are rejected.
	JWTSecret []byte
	// Cache caches verified basic auth credentials. Optional.
	Cache *AuthorizationCache
}

// NewMiddleware returns a middleware handler which authenticates requests with
// either basic auth or a bearer token.
//
// This is a final handler with regards to credentials. It will return
// http.StatusUnauthorized when credentials are present but invalid.
func NewMiddleware(mb *MiddlewareBuilder) mux.MiddlewareFunc {
	cache := mb.Cache
	if cache == nil {
		cache = NewAuthorizationCache()
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if AuthorizationFromContext(r.Context()) != nil { // already authorized?
				h.ServeHTTP(w, r)
				return
			}
			rlog := logger.FromContext(r.Context())

			var auth *Authorization
			header := r.Header.Get("Authorization")
			if email, password, ok := r.BasicAuth(); ok {
				sum := sha256.Sum256([]byte(header))
				key := hex.EncodeToString(sum[:])
				auth = cache.Read(key)
				if auth == nil {
					user, err := mb.Users.GetUserByEmail(r.Context(), email)
					if err != nil && err != store.ErrNotFound {
						rlog.WithError(err).Errorf("Error 4705: cannot look up user %s", email)
						writeMessage(w, http.StatusInternalServerError, "Error 4705")
						return
					}
					if err != nil || !CheckPassword(user.PasswordHash, password) {
						writeMessage(w, http.StatusUnauthorized, "invalid email or password")
						return
					}
					auth = &Authorization{UserID: user.ID, Email: user.Email, Method: MethodBasic}
					cache.Write(key, auth)
				}
			} else if len(header) >= 8 && strings.ToLower(header[:7]) == "bearer " {
				var err error
				auth, err = ParseToken(mb.JWTSecret, header[7:])
				if err != nil {
					rlog.WithError(err).Debugln("rejected bearer token")
					writeMessage(w, http.StatusUnauthorized, "invalid token")
					return
				}
			} else if len(header) > 0 {
				writeMessage(w, http.StatusUnauthorized, "unsupported authorization")
				return
			}

			if auth == nil {
				h.ServeHTTP(w, r) // no credentials, moving on
				return
			}
			ctx, _ := logger.ContextWithLoggerIdentity(r.Context(), auth.Email)
			ctx = auth.ContextWithAuthorization(ctx)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	body, _ := json.Marshal(map[string]string{"message": message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
