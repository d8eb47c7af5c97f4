// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/gamemakerclub/api-core/core/resource"
)

// Memory is an in-memory Datastore. Resources are kept as serialized datastore
// documents, exactly like the Postgres datastore keeps them.
type Memory struct {
	mu        sync.RWMutex
	seq       int64
	users     map[uuid.UUID]memoryEntry[User]
	teams     map[uuid.UUID]memoryEntry[Team]
	projects  map[uuid.UUID]memoryEntry[Project]
	resources map[uuid.UUID]memoryResource
}

type memoryEntry[T any] struct {
	seq   int64
	value T
}

type memoryResource struct {
	seq       int64
	projectID uuid.UUID
	teamID    uuid.UUID
	document  []byte
}

var _ Datastore = (*Memory)(nil)

// NewMemory returns an empty in-memory datastore
func NewMemory() *Memory {
	return &Memory{
		users:     map[uuid.UUID]memoryEntry[User]{},
		teams:     map[uuid.UUID]memoryEntry[Team]{},
		projects:  map[uuid.UUID]memoryEntry[Project]{},
		resources: map[uuid.UUID]memoryResource{},
	}
}

func (m *Memory) next() int64 {
	m.seq++
	return m.seq
}

// Ping implements Datastore
func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// CreateUser implements Datastore
func (m *Memory) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if strings.EqualFold(e.value.Email, user.Email) {
			return ErrConflict
		}
	}
	if user.TeamID != nil {
		if _, ok := m.teams[*user.TeamID]; !ok {
			return ErrNotFound
		}
	}
	m.users[user.ID] = memoryEntry[User]{seq: m.next(), value: copyUser(*user)}
	return nil
}

// GetUser implements Datastore
func (m *Memory) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	user := copyUser(e.value)
	return &user, nil
}

// GetUserByEmail implements Datastore
func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.users {
		if strings.EqualFold(e.value.Email, email) {
			user := copyUser(e.value)
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateUser implements Datastore
func (m *Memory) UpdateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if user.TeamID != nil {
		if _, ok := m.teams[*user.TeamID]; !ok {
			return ErrNotFound
		}
	}
	for id, other := range m.users {
		if id != user.ID && strings.EqualFold(other.value.Email, user.Email) {
			return ErrConflict
		}
	}
	e.value = copyUser(*user)
	m.users[user.ID] = e
	return nil
}

// DeleteUser implements Datastore
func (m *Memory) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return ErrNotFound
	}
	delete(m.users, userID)
	return nil
}

// CreateTeam implements Datastore
func (m *Memory) CreateTeam(ctx context.Context, team *Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[team.ID] = memoryEntry[Team]{seq: m.next(), value: *team}
	return nil
}

// GetTeam implements Datastore
func (m *Memory) GetTeam(ctx context.Context, teamID uuid.UUID) (*Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.teams[teamID]
	if !ok {
		return nil, ErrNotFound
	}
	team := e.value
	return &team, nil
}

// UpdateTeam implements Datastore
func (m *Memory) UpdateTeam(ctx context.Context, team *Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.teams[team.ID]
	if !ok {
		return ErrNotFound
	}
	e.value = *team
	m.teams[team.ID] = e
	return nil
}

// DeleteTeam implements Datastore
func (m *Memory) DeleteTeam(ctx context.Context, teamID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[teamID]; !ok {
		return ErrNotFound
	}
	delete(m.teams, teamID)
	for id, e := range m.users {
		if e.value.TeamID != nil && *e.value.TeamID == teamID {
			e.value.TeamID = nil
			m.users[id] = e
		}
	}
	for id, e := range m.projects {
		if e.value.TeamID == teamID {
			delete(m.projects, id)
		}
	}
	for id, e := range m.resources {
		if e.teamID == teamID {
			delete(m.resources, id)
		}
	}
	return nil
}

// CreateProject implements Datastore
func (m *Memory) CreateProject(ctx context.Context, project *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[project.TeamID]; !ok {
		return ErrNotFound
	}
	m.projects[project.ID] = memoryEntry[Project]{seq: m.next(), value: *project}
	return nil
}

// GetProject implements Datastore
func (m *Memory) GetProject(ctx context.Context, teamID, projectID uuid.UUID) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.projects[projectID]
	if !ok || e.value.TeamID != teamID {
		return nil, ErrNotFound
	}
	project := e.value
	return &project, nil
}

// ListProjects implements Datastore
func (m *Memory) ListProjects(ctx context.Context, teamID uuid.UUID) ([]*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []memoryEntry[Project]
	for _, e := range m.projects {
		if e.value.TeamID == teamID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	projects := make([]*Project, len(entries))
	for i := range entries {
		project := entries[i].value
		projects[i] = &project
	}
	return projects, nil
}

// UpdateProject implements Datastore
func (m *Memory) UpdateProject(ctx context.Context, project *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.projects[project.ID]
	if !ok || e.value.TeamID != project.TeamID {
		return ErrNotFound
	}
	e.value = *project
	m.projects[project.ID] = e
	return nil
}

// DeleteProject implements Datastore
func (m *Memory) DeleteProject(ctx context.Context, teamID, projectID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.projects[projectID]
	if !ok || e.value.TeamID != teamID {
		return ErrNotFound
	}
	delete(m.projects, projectID)
	for id, r := range m.resources {
		if r.projectID == projectID {
			delete(m.resources, id)
		}
	}
	return nil
}

// CreateResource implements Datastore
func (m *Memory) CreateResource(ctx context.Context, r resource.Resource) error {
	document, err := json.Marshal(r.ToDatastore())
	if err != nil {
		return err
	}
	meta := r.Meta()
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[meta.ProjectID]; !ok {
		return ErrNotFound
	}
	m.resources[meta.ID] = memoryResource{
		seq:       m.next(),
		projectID: meta.ProjectID,
		teamID:    meta.TeamID,
		document:  document,
	}
	return nil
}

// GetResource implements Datastore
func (m *Memory) GetResource(ctx context.Context, projectID, resourceID uuid.UUID) (resource.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.resources[resourceID]
	if !ok || e.projectID != projectID {
		return nil, ErrNotFound
	}
	return decodeResource(resourceID, e.document)
}

// ListResources implements Datastore
func (m *Memory) ListResources(ctx context.Context, projectID uuid.UUID) ([]resource.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type keyed struct {
		id uuid.UUID
		memoryResource
	}
	var entries []keyed
	for id, e := range m.resources {
		if e.projectID == projectID {
			entries = append(entries, keyed{id, e})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	resources := make([]resource.Resource, 0, len(entries))
	for _, e := range entries {
		r, err := decodeResource(e.id, e.document)
		if err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, nil
}

// UpdateResource implements Datastore
func (m *Memory) UpdateResource(ctx context.Context, r resource.Resource) error {
	document, err := json.Marshal(r.ToDatastore())
	if err != nil {
		return err
	}
	meta := r.Meta()
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.resources[meta.ID]
	if !ok || e.projectID != meta.ProjectID {
		return ErrNotFound
	}
	e.document = document
	m.resources[meta.ID] = e
	return nil
}

// DeleteResource implements Datastore
func (m *Memory) DeleteResource(ctx context.Context, projectID, resourceID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.resources[resourceID]
	if !ok || e.projectID != projectID {
		return ErrNotFound
	}
	delete(m.resources, resourceID)
	return nil
}

func copyUser(user User) User {
	if user.TeamID != nil {
		teamID := *user.TeamID
		user.TeamID = &teamID
	}
	return user
}

func decodeResource(id uuid.UUID, document []byte) (resource.Resource, error) {
	var object map[string]interface{}
	if err := json.Unmarshal(document, &object); err != nil {
		return nil, err
	}
	return resource.FromDatastore(id, object)
}
