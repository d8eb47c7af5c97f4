// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package backend

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/gamemakerclub/api-core/core/logger"
)

var (
	// Version is the version of the curent build
	Version = "unset"
)

// healthTimeout bounds the datastore ping of the health route
const healthTimeout = 5 * time.Second

func (b *Backend) handleVersion(router *mux.Router) {
	logger.Default().Debugln("version")
	logger.Default().Debugln("  handle version route: /version GET")
	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": Version})
	}).Methods(http.MethodOptions, http.MethodGet)
}

// handleHealth adds /health, which answers http.StatusServiceUnavailable when
// the datastore cannot be reached
func (b *Backend) handleHealth(router *mux.Router) {
	logger.Default().Debugln("  handle health route: /health GET")
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := b.db.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).WithError(err).Errorf("Error 4760: datastore is not reachable")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": Version})
	}).Methods(http.MethodOptions, http.MethodGet)
}
