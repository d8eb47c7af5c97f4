// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package backend

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gamemakerclub/api-core/core"
	"github.com/gamemakerclub/api-core/core/logger"
	"github.com/gamemakerclub/api-core/core/schema"
	"github.com/gamemakerclub/api-core/core/store"
)

func teamToAPI(team *store.Team) map[string]interface{} {
	return map[string]interface{}{
		"id":        team.ID.String(),
		"name":      team.Name,
		"userId":    team.UserID.String(),
		"createdAt": team.CreatedAt.Unix(),
	}
}

// createTeam creates a team. The creator joins it with PATCH /me.
func (b *Backend) createTeam(w http.ResponseWriter, r *http.Request) {
	user, ok := b.me(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok || !b.validate(w, body, schema.IDNamed) {
		return
	}
	name, _ := body["name"].(string)
	if name == "" {
		name = "New Team"
	}
	team := &store.Team{
		ID:        uuid.New(),
		Name:      name,
		UserID:    user.ID,
		CreatedAt: b.now().UTC(),
	}
	if err := b.db.CreateTeam(r.Context(), team); err != nil {
		b.internalError(w, r, "4720", err, "cannot create team")
		return
	}
	logger.FromContext(r.Context()).Infoln("created team", team.ID)
	response := teamToAPI(team)
	b.notify(r, "team", core.OperationCreate, response)
	writeJSON(w, http.StatusCreated, response)
}

func (b *Backend) getMyTeam(w http.ResponseWriter, r *http.Request) {
	_, team, ok := b.myTeam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, teamToAPI(team))
}

func (b *Backend) patchMyTeam(w http.ResponseWriter, r *http.Request) {
	_, team, ok := b.myTeam(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok || !b.validate(w, body, schema.IDNamed) {
		return
	}
	if name, ok := body["name"].(string); ok && name != "" {
		team.Name = name
	}
	if err := b.db.UpdateTeam(r.Context(), team); err != nil {
		b.storeError(w, r, "4721", err, "team")
		return
	}
	response := teamToAPI(team)
	b.notify(r, "team", core.OperationUpdate, response)
	writeJSON(w, http.StatusOK, response)
}

// deleteMyTeam deletes the team with all its projects, resources and files
func (b *Backend) deleteMyTeam(w http.ResponseWriter, r *http.Request) {
	_, team, ok := b.myTeam(w, r)
	if !ok {
		return
	}
	if err := b.db.DeleteTeam(r.Context(), team.ID); err != nil {
		b.storeError(w, r, "4722", err, "team")
		return
	}
	b.deleteFiles(r, "/"+team.ID.String())
	logger.FromContext(r.Context()).Infoln("deleted team", team.ID)
	b.notify(r, "team", core.OperationDelete, teamToAPI(team))
	w.WriteHeader(http.StatusNoContent)
}

// deleteFiles removes all stored files below prefix. Failures are logged, the
// entities are already gone.
func (b *Backend) deleteFiles(r *http.Request, prefix string) {
	if b.kssDriver == nil {
		return
	}
	if err := b.kssDriver.DeleteAllWithPrefix(r.Context(), prefix); err != nil {
		logger.FromContext(r.Context()).WithError(err).Errorf("Error 4723: cannot delete files with prefix %s", prefix)
	}
}
