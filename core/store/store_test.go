// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joeshaw/envdecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamemakerclub/api-core/core/csql"
	"github.com/gamemakerclub/api-core/core/resource"
)

// use POSTGRES="host=localhost port=5432 user=postgres dbname=postgres sslmode=disable"
// and POSTGRES_PASSWORD="docker" to run the tests against postgres as well
type testService struct {
	Postgres         string `env:"POSTGRES,optional" description:"the connection string for the Postgres DB without password"`
	PostgresPassword string `env:"POSTGRES_PASSWORD,optional" description:"password to the Postgres DB"`
}

func datastores(t *testing.T) map[string]Datastore {
	result := map[string]Datastore{"memory": NewMemory()}

	var service testService
	if err := envdecode.Decode(&service); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		t.Fatal(err)
	}
	if service.Postgres == "" {
		return result
	}
	db := csql.OpenWithSchema(service.Postgres, service.PostgresPassword, "_store_unit_test_")
	t.Cleanup(func() { db.Close() })
	db.ClearSchema()
	p, err := NewPostgres(db)
	require.NoError(t, err)
	result["postgres"] = p
	return result
}

func TestDatastores(t *testing.T) {
	for name, ds := range datastores(t) {
		ds := ds
		t.Run(name, func(t *testing.T) {
			t.Run("users", func(t *testing.T) { testUsers(t, ds) })
			t.Run("projects", func(t *testing.T) { testProjects(t, ds) })
			t.Run("resources", func(t *testing.T) { testResources(t, ds) })
			t.Run("team deletion", func(t *testing.T) { testDeleteTeam(t, ds) })
		})
	}
}

// now is rounded to postgres precision
func now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}

func newUser(t *testing.T, ds Datastore) *User {
	user := &User{
		ID:           uuid.New(),
		Name:         "James",
		Email:        uuid.NewString() + "@gamemaker.club",
		PasswordHash: "hash",
		CreatedAt:    now(),
	}
	require.NoError(t, ds.CreateUser(context.Background(), user))
	return user
}

func newTeam(t *testing.T, ds Datastore, user *User) *Team {
	ctx := context.Background()
	team := &Team{ID: uuid.New(), Name: "Team", UserID: user.ID, CreatedAt: now()}
	require.NoError(t, ds.CreateTeam(ctx, team))
	user.TeamID = &team.ID
	require.NoError(t, ds.UpdateUser(ctx, user))
	return team
}

func newProject(t *testing.T, ds Datastore, team *Team, name string) *Project {
	project := &Project{
		ID:        uuid.New(),
		Name:      name,
		TeamID:    team.ID,
		UserID:    team.UserID,
		CreatedAt: now(),
		UpdatedAt: now(),
	}
	require.NoError(t, ds.CreateProject(context.Background(), project))
	return project
}

func newAtom(t *testing.T, ds Datastore, project *Project, name string) *resource.Atom {
	a := resource.NewAtom()
	a.FromAPIPost(map[string]interface{}{"name": name})
	a.ID = uuid.New()
	a.UserID = project.UserID
	a.TeamID = project.TeamID
	a.ProjectID = project.ID
	a.Stamp(time.Now())
	require.NoError(t, ds.CreateResource(context.Background(), a))
	return a
}

func testUsers(t *testing.T, ds Datastore) {
	ctx := context.Background()
	user := newUser(t, ds)

	got, err := ds.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Nil(t, got.TeamID)

	got, err = ds.GetUserByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	duplicate := *user
	duplicate.ID = uuid.New()
	assert.Equal(t, ErrConflict, ds.CreateUser(ctx, &duplicate))

	missing := uuid.New()
	user.TeamID = &missing
	assert.Equal(t, ErrNotFound, ds.UpdateUser(ctx, user))

	team := newTeam(t, ds, user)
	got, err = ds.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TeamID)
	assert.Equal(t, team.ID, *got.TeamID)

	require.NoError(t, ds.DeleteUser(ctx, user.ID))
	_, err = ds.GetUser(ctx, user.ID)
	assert.Equal(t, ErrNotFound, err)
	assert.Equal(t, ErrNotFound, ds.DeleteUser(ctx, user.ID))
}

func testProjects(t *testing.T, ds Datastore) {
	ctx := context.Background()
	user := newUser(t, ds)
	team := newTeam(t, ds, user)

	projects, err := ds.ListProjects(ctx, team.ID)
	require.NoError(t, err)
	assert.Empty(t, projects)

	first := newProject(t, ds, team, "first")
	time.Sleep(2 * time.Millisecond)
	second := newProject(t, ds, team, "second")

	projects, err = ds.ListProjects(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, first.ID, projects[0].ID)
	assert.Equal(t, second.ID, projects[1].ID)

	// projects are only visible to their team
	other := newTeam(t, ds, newUser(t, ds))
	_, err = ds.GetProject(ctx, other.ID, first.ID)
	assert.Equal(t, ErrNotFound, err)
	assert.Equal(t, ErrNotFound, ds.DeleteProject(ctx, other.ID, first.ID))

	first.Name = "renamed"
	require.NoError(t, ds.UpdateProject(ctx, first))
	got, err := ds.GetProject(ctx, team.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	orphan := &Project{ID: uuid.New(), TeamID: uuid.New(), CreatedAt: now(), UpdatedAt: now()}
	assert.Equal(t, ErrNotFound, ds.CreateProject(ctx, orphan))

	require.NoError(t, ds.DeleteProject(ctx, team.ID, first.ID))
	projects, err = ds.ListProjects(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func testResources(t *testing.T, ds Datastore) {
	ctx := context.Background()
	team := newTeam(t, ds, newUser(t, ds))
	project := newProject(t, ds, team, "game")

	a := newAtom(t, ds, project, "Bird")
	time.Sleep(2 * time.Millisecond)
	b := newAtom(t, ds, project, "Fish")

	got, err := ds.GetResource(ctx, project.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	// the returned resource is a copy
	got.Meta().Name = "changed"
	again, err := ds.GetResource(ctx, project.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bird", again.Meta().Name)

	list, err := ds.ListResources(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].Meta().ID)
	assert.Equal(t, b.ID, list[1].Meta().ID)

	a.FromAPIPatch(map[string]interface{}{"imageId": "image"})
	require.NoError(t, ds.UpdateResource(ctx, a))
	got, err = ds.GetResource(ctx, project.ID, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.(*resource.Atom).ImageID)
	assert.Equal(t, "image", *got.(*resource.Atom).ImageID)

	_, err = ds.GetResource(ctx, uuid.New(), a.ID)
	assert.Equal(t, ErrNotFound, err)

	require.NoError(t, ds.DeleteResource(ctx, project.ID, b.ID))
	assert.Equal(t, ErrNotFound, ds.DeleteResource(ctx, project.ID, b.ID))

	// resources need an existing project
	c := resource.NewSound()
	c.ID = uuid.New()
	c.ProjectID = uuid.New()
	assert.Equal(t, ErrNotFound, ds.CreateResource(ctx, c))
}

func testDeleteTeam(t *testing.T, ds Datastore) {
	ctx := context.Background()
	user := newUser(t, ds)
	team := newTeam(t, ds, user)
	project := newProject(t, ds, team, "game")
	a := newAtom(t, ds, project, "Bird")

	require.NoError(t, ds.DeleteTeam(ctx, team.ID))

	_, err := ds.GetTeam(ctx, team.ID)
	assert.Equal(t, ErrNotFound, err)
	_, err = ds.GetProject(ctx, team.ID, project.ID)
	assert.Equal(t, ErrNotFound, err)
	_, err = ds.GetResource(ctx, project.ID, a.ID)
	assert.Equal(t, ErrNotFound, err)

	got, err := ds.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TeamID)
}
