// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package backend

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gamemakerclub/api-core/core"
	"github.com/gamemakerclub/api-core/core/access"
	"github.com/gamemakerclub/api-core/core/backend/kss"
	"github.com/gamemakerclub/api-core/core/logger"
	"github.com/gamemakerclub/api-core/core/notify"
	"github.com/gamemakerclub/api-core/core/schema"
	"github.com/gamemakerclub/api-core/core/store"
)

// APIPrefix is the path prefix of all versioned routes
const APIPrefix = "/v1"

// Backend is the gamemaker.club REST backend
type Backend struct {
	db            store.Datastore
	router        *mux.Router
	notifier      core.Notifier
	kssDriver     kss.Driver
	jsonValidator *schema.Validator
	authCache     *access.AuthorizationCache
	jwtSecret     []byte
	tokenLifetime time.Duration
	now           func() time.Time
}

// Builder is a builder helper for the Backend
type Builder struct {
	// DB is the datastore. This is mandatory.
	DB store.Datastore
	// Router is a mux router. This is mandatory.
	Router *mux.Router
	// Notifier receives a notification for every change. Defaults to a notifier
	// which only logs.
	Notifier core.Notifier
	// KssDriver stores the files of image and sound resources. Without a driver
	// the file routes answer with http.StatusNotImplemented.
	KssDriver kss.Driver
	// JWTSecret is the HS256 secret for bearer tokens. Without a secret only
	// basic authentication is available.
	JWTSecret []byte
	// TokenLifetime is the lifetime of issued bearer tokens. Defaults to
	// access.DefaultTokenLifetime
	TokenLifetime time.Duration
	// Validator validates request bodies. Defaults to the embedded schemas.
	Validator *schema.Validator
	// Now returns the current time. Defaults to time.Now
	Now func() time.Time
}

// New realizes the actual backend and adds all routes to the router
func New(bb *Builder) *Backend {
	if bb.DB == nil {
		panic("DB is missing")
	}
	if bb.Router == nil {
		panic("Router is missing")
	}

	b := &Backend{
		db:            bb.DB,
		router:        bb.Router,
		notifier:      bb.Notifier,
		kssDriver:     bb.KssDriver,
		jsonValidator: bb.Validator,
		authCache:     access.NewAuthorizationCache(),
		jwtSecret:     bb.JWTSecret,
		tokenLifetime: bb.TokenLifetime,
		now:           bb.Now,
	}
	if b.notifier == nil {
		b.notifier = notify.Log{}
	}
	if b.tokenLifetime == 0 {
		b.tokenLifetime = access.DefaultTokenLifetime
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.jsonValidator == nil {
		var err error
		b.jsonValidator, err = schema.Default()
		if err != nil {
			panic(err)
		}
	}

	logger.AddRequestID(b.router)
	b.handleCORS()
	b.handleCompression()
	b.handleVersion(b.router)
	b.handleHealth(b.router)

	api := b.router.PathPrefix(APIPrefix).Subrouter()
	api.Use(access.NewMiddleware(&access.MiddlewareBuilder{
		Users:     b.db,
		JWTSecret: b.jwtSecret,
		Cache:     b.authCache,
	}))
	b.handleRoutes(api)
	return b
}

// handleRoutes adds all routes of the versioned api
func (b *Backend) handleRoutes(router *mux.Router) {
	nillog := logger.FromContext(nil)
	nillog.Debugln("backend: HandleRoutes")

	users := "/" + core.Plural("user")
	teams := "/" + core.Plural("team")
	projects := "/me/team/" + core.Plural("project")
	project := projects + "/{project_id}"
	resources := project + "/" + core.Plural("resource")
	resource := resources + "/{resource_id}"

	routes := []struct {
		path    string
		method  string
		handler http.HandlerFunc
	}{
		{users, http.MethodPost, b.createUser},
		{"/me", http.MethodGet, b.getMe},
		{"/me", http.MethodPatch, b.patchMe},
		{"/me", http.MethodDelete, b.deleteMe},
		{"/me/" + core.Plural("token"), http.MethodPost, b.createToken},
		{teams, http.MethodPost, b.createTeam},
		{"/me/team", http.MethodGet, b.getMyTeam},
		{"/me/team", http.MethodPatch, b.patchMyTeam},
		{"/me/team", http.MethodDelete, b.deleteMyTeam},
		{projects, http.MethodGet, b.listProjects},
		{projects, http.MethodPost, b.createProject},
		{project, http.MethodGet, b.getProject},
		{project, http.MethodPatch, b.patchProject},
		{project, http.MethodDelete, b.deleteProject},
		{resources, http.MethodGet, b.listResources},
		{resources, http.MethodPost, b.createResource},
		{resource, http.MethodGet, b.getResource},
		{resource, http.MethodPatch, b.patchResource},
		{resource, http.MethodDelete, b.deleteResource},
		{resource + "/file", http.MethodPut, b.putResourceFile},
		{resource + "/file", http.MethodGet, b.getResourceFile},
	}
	for _, route := range routes {
		nillog.Debugf("  handle route: %s%s %s", APIPrefix, route.path, route.method)
		router.HandleFunc(route.path, route.handler).Methods(http.MethodOptions, route.method)
	}
}
