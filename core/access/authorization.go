// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package access provides utilities for access control

Requests are authenticated either with HTTP basic authentication (email and
password) or with a JWT bearer token issued by IssueToken. The middleware
returned by NewMiddleware adds an Authorization to the request context,

	auth := access.AuthorizationFromContext(ctx)

Requests without credentials pass through without an authorization, it is up
to the handler to reject them.
*/
package access

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

// the predefined context key
const (
	contextKeyAuthorization contextKey = "_authorization_"
)

// Method is the authentication method which produced an authorization
type Method string

// supported authentication methods
const (
	MethodBasic  Method = "basic"
	MethodBearer Method = "bearer"
)

// Authorization is a context object which stores the authenticated user.
// Team membership is not part of the authorization, it is looked up with the
// user for every request.
type Authorization struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Method Method    `json:"method"`
}

// ContextWithAuthorization returns a new context with this authorization added to it
func (a *Authorization) ContextWithAuthorization(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeyAuthorization, a)
}

// AuthorizationFromContext retrieves an authorization from the context
func AuthorizationFromContext(ctx context.Context) *Authorization {
	a, ok := ctx.Value(contextKeyAuthorization).(*Authorization)
	if ok {
		return a
	}
	return nil
}

// AuthorizationCache is an in-memory cache for authorizations. The basic auth
// middleware caches verified credentials in it.
type AuthorizationCache struct {
	mutex sync.RWMutex
	cache map[string]*Authorization
}

// NewAuthorizationCache creates a new authorization cache
func NewAuthorizationCache() *AuthorizationCache {
	return &AuthorizationCache{cache: make(map[string]*Authorization)}
}

// Read returns an authorization from in-process cache.
// This function is go-route safe
func (a *AuthorizationCache) Read(key string) *Authorization {
	a.mutex.RLock()
	auth, ok := a.cache[key]
	a.mutex.RUnlock()
	if ok {
		return auth
	}
	return nil
}

// Write stores an authorization in the in-memory cache.
// This function is go-route safe
func (a *AuthorizationCache) Write(key string, auth *Authorization) {
	a.mutex.Lock()
	a.cache[key] = auth
	a.mutex.Unlock()
}

// Invalidate removes all cached authorizations of a user, for example after a
// password change or after the user was deleted
func (a *AuthorizationCache) Invalidate(userID uuid.UUID) {
	a.mutex.Lock()
	for key, auth := range a.cache {
		if auth.UserID == userID {
			delete(a.cache, key)
		}
	}
	a.mutex.Unlock()
}
