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

// DefaultProjectName is the name of projects created without one
const DefaultProjectName = "New Project"

func projectToAPI(project *store.Project) map[string]interface{} {
	return map[string]interface{}{
		"id":        project.ID.String(),
		"name":      project.Name,
		"teamId":    project.TeamID.String(),
		"userId":    project.UserID.String(),
		"createdAt": project.CreatedAt.Unix(),
		"updatedAt": project.UpdatedAt.Unix(),
	}
}

func (b *Backend) listProjects(w http.ResponseWriter, r *http.Request) {
	_, team, ok := b.myTeam(w, r)
	if !ok {
		return
	}
	projects, err := b.db.ListProjects(r.Context(), team.ID)
	if err != nil {
		b.internalError(w, r, "4730", err, "cannot list projects")
		return
	}
	response := make([]map[string]interface{}, 0, len(projects))
	for _, project := range projects {
		response = append(response, projectToAPI(project))
	}
	writeJSON(w, http.StatusOK, response)
}

func (b *Backend) createProject(w http.ResponseWriter, r *http.Request) {
	user, team, ok := b.myTeam(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok || !b.validate(w, body, schema.IDNamed) {
		return
	}
	name, _ := body["name"].(string)
	if name == "" {
		name = DefaultProjectName
	}
	now := b.now().UTC()
	project := &store.Project{
		ID:        uuid.New(),
		Name:      name,
		TeamID:    team.ID,
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.db.CreateProject(r.Context(), project); err != nil {
		b.internalError(w, r, "4731", err, "cannot create project")
		return
	}
	logger.FromContext(r.Context()).Infoln("created project", project.ID)
	response := projectToAPI(project)
	b.notify(r, "project", core.OperationCreate, response)
	writeJSON(w, http.StatusCreated, response)
}

func (b *Backend) getProject(w http.ResponseWriter, r *http.Request) {
	_, project, ok := b.myProject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, projectToAPI(project))
}

func (b *Backend) patchProject(w http.ResponseWriter, r *http.Request) {
	_, project, ok := b.myProject(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok || !b.validate(w, body, schema.IDNamed) {
		return
	}
	if name, ok := body["name"].(string); ok && name != "" {
		project.Name = name
	}
	project.UpdatedAt = b.now().UTC()
	if err := b.db.UpdateProject(r.Context(), project); err != nil {
		b.storeError(w, r, "4732", err, "project")
		return
	}
	response := projectToAPI(project)
	b.notify(r, "project", core.OperationUpdate, response)
	writeJSON(w, http.StatusOK, response)
}

// deleteProject deletes the project with all its resources and files
func (b *Backend) deleteProject(w http.ResponseWriter, r *http.Request) {
	_, project, ok := b.myProject(w, r)
	if !ok {
		return
	}
	if err := b.db.DeleteProject(r.Context(), project.TeamID, project.ID); err != nil {
		b.storeError(w, r, "4733", err, "project")
		return
	}
	b.deleteFiles(r, "/"+project.TeamID.String()+"/"+project.ID.String())
	logger.FromContext(r.Context()).Infoln("deleted project", project.ID)
	b.notify(r, "project", core.OperationDelete, projectToAPI(project))
	w.WriteHeader(http.StatusNoContent)
}
