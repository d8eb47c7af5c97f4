// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package backend

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gamemakerclub/api-core/core"
	"github.com/gamemakerclub/api-core/core/access"
	"github.com/gamemakerclub/api-core/core/logger"
	"github.com/gamemakerclub/api-core/core/schema"
	"github.com/gamemakerclub/api-core/core/store"
)

// userToAPI never exposes the password hash
func userToAPI(user *store.User) map[string]interface{} {
	var teamID interface{}
	if user.TeamID != nil {
		teamID = user.TeamID.String()
	}
	return map[string]interface{}{
		"id":        user.ID.String(),
		"name":      user.Name,
		"email":     user.Email,
		"teamId":    teamID,
		"createdAt": user.CreatedAt.Unix(),
	}
}

func (b *Backend) createUser(w http.ResponseWriter, r *http.Request) {
	rlog := logger.FromContext(r.Context())
	rlog.Debugln("called route for", r.URL, r.Method)

	body, ok := readBody(w, r)
	if !ok || !b.validate(w, body, schema.IDUser) {
		return
	}
	name, _ := body["name"].(string)
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)

	hash, err := access.HashPassword(password)
	if err == access.ErrPasswordTooLong {
		writeMessage(w, http.StatusBadRequest, "password too long")
		return
	}
	if err != nil {
		b.internalError(w, r, "4710", err, "cannot hash password")
		return
	}
	user := &store.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		CreatedAt:    b.now().UTC(),
	}
	err = b.db.CreateUser(r.Context(), user)
	if err == store.ErrConflict {
		writeMessage(w, http.StatusConflict, "a user with this email already exists")
		return
	}
	if err != nil {
		b.internalError(w, r, "4711", err, "cannot create user")
		return
	}
	rlog.Infoln("created user", user.ID)
	response := userToAPI(user)
	b.notify(r, "user", core.OperationCreate, response)
	writeJSON(w, http.StatusCreated, response)
}

func (b *Backend) getMe(w http.ResponseWriter, r *http.Request) {
	user, ok := b.me(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, userToAPI(user))
}

// patchMe updates name, password and team membership. A teamId of null leaves the team.
func (b *Backend) patchMe(w http.ResponseWriter, r *http.Request) {
	user, ok := b.me(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok || !b.validate(w, body, schema.IDNamed) {
		return
	}

	if name, ok := body["name"].(string); ok {
		user.Name = name
	}
	passwordChanged := false
	if password, ok := body["password"].(string); ok {
		if len(password) < 6 {
			writeMessage(w, http.StatusBadRequest, "password too short")
			return
		}
		hash, err := access.HashPassword(password)
		if err == access.ErrPasswordTooLong {
			writeMessage(w, http.StatusBadRequest, "password too long")
			return
		}
		if err != nil {
			b.internalError(w, r, "4710", err, "cannot hash password")
			return
		}
		user.PasswordHash = hash
		passwordChanged = true
	}
	if value, ok := body["teamId"]; ok {
		switch teamID := value.(type) {
		case nil:
			user.TeamID = nil
		case string:
			id, err := uuid.Parse(teamID)
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "team does not exist")
				return
			}
			user.TeamID = &id
		default:
			writeMessage(w, http.StatusBadRequest, "teamId must be a string or null")
			return
		}
	}

	err := b.db.UpdateUser(r.Context(), user)
	if err == store.ErrNotFound {
		// the user exists, so it is the team which is missing
		writeMessage(w, http.StatusBadRequest, "team does not exist")
		return
	}
	if err != nil {
		b.internalError(w, r, "4712", err, "cannot update user")
		return
	}
	if passwordChanged {
		b.authCache.Invalidate(user.ID)
	}
	response := userToAPI(user)
	b.notify(r, "user", core.OperationUpdate, response)
	writeJSON(w, http.StatusOK, response)
}

func (b *Backend) deleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := b.me(w, r)
	if !ok {
		return
	}
	if err := b.db.DeleteUser(r.Context(), user.ID); err != nil {
		b.storeError(w, r, "4713", err, "user")
		return
	}
	b.authCache.Invalidate(user.ID)
	logger.FromContext(r.Context()).Infoln("deleted user", user.ID)
	b.notify(r, "user", core.OperationDelete, userToAPI(user))
	w.WriteHeader(http.StatusNoContent)
}

// createToken issues a bearer token for the authenticated user
func (b *Backend) createToken(w http.ResponseWriter, r *http.Request) {
	user, ok := b.me(w, r)
	if !ok {
		return
	}
	if len(b.jwtSecret) == 0 {
		writeMessage(w, http.StatusNotImplemented, "bearer tokens are not configured")
		return
	}
	now := b.now()
	token, err := access.IssueToken(b.jwtSecret, user, b.tokenLifetime, now)
	if err != nil {
		b.internalError(w, r, "4714", err, "cannot issue token")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token":     token,
		"expiresAt": now.Add(b.tokenLifetime).Unix(),
	})
}
