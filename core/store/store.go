// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package store persists users, teams, projects and resources.

Ownership forms a chain: a team owns projects, a project owns resources.
Deleting a team deletes its projects and their resources and removes the team
from all its members. Resources are persisted as their datastore document, see
package resource.

Two implementations exist: Postgres for production and Memory for tests and
local development.
*/
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/gamemakerclub/api-core/core/resource"
)

// sentinel errors returned by all datastores
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// User is a registered user. TeamID is nil as long as the user has not joined a team.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	TeamID       *uuid.UUID
	CreatedAt    time.Time
}

// Team groups users working on the same projects. UserID is the creator.
type Team struct {
	ID        uuid.UUID
	Name      string
	UserID    uuid.UUID
	CreatedAt time.Time
}

// Project is a game owned by a team
type Project struct {
	ID        uuid.UUID
	Name      string
	TeamID    uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Datastore is the persistence backend. Get, update and delete operations return
// ErrNotFound if the entity does not exist. Lists are ordered by creation time.
type Datastore interface {
	Ping(ctx context.Context) error

	// CreateUser returns ErrConflict if the email is taken
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, userID uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// UpdateUser returns ErrNotFound if the user's team does not exist
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, userID uuid.UUID) error

	CreateTeam(ctx context.Context, team *Team) error
	GetTeam(ctx context.Context, teamID uuid.UUID) (*Team, error)
	UpdateTeam(ctx context.Context, team *Team) error
	DeleteTeam(ctx context.Context, teamID uuid.UUID) error

	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, teamID, projectID uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context, teamID uuid.UUID) ([]*Project, error)
	UpdateProject(ctx context.Context, project *Project) error
	DeleteProject(ctx context.Context, teamID, projectID uuid.UUID) error

	CreateResource(ctx context.Context, r resource.Resource) error
	GetResource(ctx context.Context, projectID, resourceID uuid.UUID) (resource.Resource, error)
	ListResources(ctx context.Context, projectID uuid.UUID) ([]resource.Resource, error)
	UpdateResource(ctx context.Context, r resource.Resource) error
	DeleteResource(ctx context.Context, projectID, resourceID uuid.UUID) error
}
