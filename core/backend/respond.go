// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package backend

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gamemakerclub/api-core/core"
	"github.com/gamemakerclub/api-core/core/access"
	"github.com/gamemakerclub/api-core/core/logger"
	"github.com/gamemakerclub/api-core/core/store"
)

// maxBodySize limits JSON request bodies
const maxBodySize = 10 * 1024 * 1024

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, err := json.MarshalWithOption(body, json.DisableHTMLEscape())
	if err != nil {
		logger.Default().WithError(err).Errorf("Error 4700: cannot marshal response")
		writeMessage(w, http.StatusInternalServerError, "Error 4700")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeMessage writes an error response, {"message": message}
func writeMessage(w http.ResponseWriter, status int, message string) {
	data, _ := json.Marshal(map[string]string{"message": message})
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// readBody decodes the request body, which must be a JSON object
func readBody(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	var body map[string]interface{}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "cannot read request body")
		return nil, false
	}
	if err = json.Unmarshal(data, &body); err != nil || body == nil {
		writeMessage(w, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	return body, true
}

// validate validates the body against a schema. Writes http.StatusBadRequest if
// the body is invalid.
func (b *Backend) validate(w http.ResponseWriter, body map[string]interface{}, schemaID string) bool {
	if err := b.jsonValidator.ValidateObject(body, schemaID); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// pathID parses the uuid path variable name. Malformed IDs cannot exist, they
// are answered with http.StatusNotFound.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeMessage(w, http.StatusNotFound, name+" not found")
		return uuid.UUID{}, false
	}
	return id, true
}

// me returns the authenticated user. Writes http.StatusUnauthorized if there is none.
func (b *Backend) me(w http.ResponseWriter, r *http.Request) (*store.User, bool) {
	auth := access.AuthorizationFromContext(r.Context())
	if auth == nil {
		writeMessage(w, http.StatusUnauthorized, "not authorized")
		return nil, false
	}
	user, err := b.db.GetUser(r.Context(), auth.UserID)
	if err == store.ErrNotFound {
		b.authCache.Invalidate(auth.UserID)
		writeMessage(w, http.StatusUnauthorized, "not authorized")
		return nil, false
	}
	if err != nil {
		b.internalError(w, r, "4701", err, "cannot read user")
		return nil, false
	}
	return user, true
}

// myTeam returns the authenticated user and their team. Writes http.StatusNotFound
// if the user has no team.
func (b *Backend) myTeam(w http.ResponseWriter, r *http.Request) (*store.User, *store.Team, bool) {
	user, ok := b.me(w, r)
	if !ok {
		return nil, nil, false
	}
	if user.TeamID == nil {
		writeMessage(w, http.StatusNotFound, "user has no team")
		return nil, nil, false
	}
	team, err := b.db.GetTeam(r.Context(), *user.TeamID)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "user has no team")
		return nil, nil, false
	}
	if err != nil {
		b.internalError(w, r, "4702", err, "cannot read team")
		return nil, nil, false
	}
	return user, team, true
}

// myProject returns the authenticated user and the project of the route, which
// must belong to the user's team
func (b *Backend) myProject(w http.ResponseWriter, r *http.Request) (*store.User, *store.Project, bool) {
	user, team, ok := b.myTeam(w, r)
	if !ok {
		return nil, nil, false
	}
	projectID, ok := pathID(w, r, "project_id")
	if !ok {
		return nil, nil, false
	}
	project, err := b.db.GetProject(r.Context(), team.ID, projectID)
	if err == store.ErrNotFound {
		writeMessage(w, http.StatusNotFound, "project not found")
		return nil, nil, false
	}
	if err != nil {
		b.internalError(w, r, "4703", err, "cannot read project")
		return nil, nil, false
	}
	return user, project, true
}

// internalError logs err with an error code and answers with http.StatusInternalServerError,
// the body only carries the code
func (b *Backend) internalError(w http.ResponseWriter, r *http.Request, code string, err error, message string) {
	logger.FromContext(r.Context()).WithError(err).Errorf("Error %s: %s", code, message)
	writeMessage(w, http.StatusInternalServerError, "Error "+code)
}

// storeError maps datastore errors. ErrNotFound becomes http.StatusNotFound,
// everything else is an internal error.
func (b *Backend) storeError(w http.ResponseWriter, r *http.Request, code string, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, what+" not found")
		return
	}
	b.internalError(w, r, code, err, "cannot access "+what)
}

// notify sends a change notification. Failures are logged, the request has
// already succeeded.
func (b *Backend) notify(r *http.Request, resource string, operation core.Operation, body interface{}) {
	payload, err := json.Marshal(body)
	if err == nil {
		err = b.notifier.Notify(r.Context(), resource, operation, payload)
	}
	if err != nil {
		logger.FromContext(r.Context()).WithError(err).Errorf("Error 4750: cannot notify %s %s", operation, resource)
	}
}
