// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gamemakerclub/api-core/core/csql"
	"github.com/gamemakerclub/api-core/core/logger"
	"github.com/gamemakerclub/api-core/core/resource"
)

// Postgres is the production Datastore. All tables live in the schema of the
// csql.DB, foreign keys implement the ownership chain.
type Postgres struct {
	db *csql.DB
}

var _ Datastore = (*Postgres)(nil)

// NewPostgres creates the tables if they do not exist yet
func NewPostgres(db *csql.DB) (*Postgres, error) {
	p := &Postgres{db: db}
	s := db.Schema
	statements := []string{
		fmt.Sprintf(`CREATE table IF NOT EXISTS %s."team"
			(team_id uuid NOT NULL PRIMARY KEY,
			name varchar NOT NULL DEFAULT '',
			user_id uuid NOT NULL,
			timestamp timestamp NOT NULL DEFAULT now());`, s),
		fmt.Sprintf(`CREATE table IF NOT EXISTS %s."user"
			(user_id uuid NOT NULL PRIMARY KEY,
			name varchar NOT NULL DEFAULT '',
			email varchar NOT NULL,
			password_hash varchar NOT NULL,
			team_id uuid REFERENCES %s."team" (team_id) ON DELETE SET NULL,
			timestamp timestamp NOT NULL DEFAULT now());`, s, s),
		fmt.Sprintf(`CREATE unique index IF NOT EXISTS user_email_unique ON %s."user"(lower(email));`, s),
		fmt.Sprintf(`CREATE table IF NOT EXISTS %s."project"
			(project_id uuid NOT NULL PRIMARY KEY,
			name varchar NOT NULL DEFAULT '',
			team_id uuid NOT NULL REFERENCES %s."team" (team_id) ON DELETE CASCADE,
			user_id uuid NOT NULL,
			timestamp timestamp NOT NULL DEFAULT now(),
			updated_at timestamp NOT NULL DEFAULT now());`, s, s),
		fmt.Sprintf(`CREATE index IF NOT EXISTS sort_index_project_team_id_timestamp ON %s."project"(team_id,timestamp);`, s),
		fmt.Sprintf(`CREATE table IF NOT EXISTS %s."resource"
			(resource_id uuid NOT NULL PRIMARY KEY,
			project_id uuid NOT NULL REFERENCES %s."project" (project_id) ON DELETE CASCADE,
			type varchar NOT NULL,
			timestamp timestamp NOT NULL DEFAULT now(),
			properties json NOT NULL DEFAULT '{}'::jsonb);`, s, s),
		fmt.Sprintf(`CREATE index IF NOT EXISTS sort_index_resource_project_id_timestamp ON %s."resource"(project_id,timestamp);`, s),
	}
	for _, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			logger.Default().WithError(err).Errorf("Error 4701: cannot execute `%s`", statement)
			return nil, err
		}
	}
	return p, nil
}

// translate maps postgres errors onto the sentinel errors of this package
func translate(err error) error {
	if errors.Is(err, csql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return ErrConflict
		case "23503": // foreign_key_violation
			return ErrNotFound
		}
	}
	return err
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping implements Datastore
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// CreateUser implements Datastore
func (p *Postgres) CreateUser(ctx context.Context, user *User) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO `+p.db.Schema+`."user" (user_id,name,email,password_hash,team_id,timestamp) VALUES($1,$2,$3,$4,$5,$6);`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.TeamID, user.CreatedAt.UTC())
	return translate(err)
}

func (p *Postgres) getUser(ctx context.Context, where string, arg interface{}) (*User, error) {
	var user User
	var teamID uuid.NullUUID
	err := p.db.QueryRowContext(ctx,
		`SELECT user_id,name,email,password_hash,team_id,timestamp FROM `+p.db.Schema+`."user" WHERE `+where+`;`, arg).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &teamID, &user.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	if teamID.Valid {
		user.TeamID = &teamID.UUID
	}
	return &user, nil
}

// GetUser implements Datastore
func (p *Postgres) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	return p.getUser(ctx, "user_id=$1", userID)
}

// GetUserByEmail implements Datastore
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return p.getUser(ctx, "lower(email)=lower($1)", email)
}

// UpdateUser implements Datastore
func (p *Postgres) UpdateUser(ctx context.Context, user *User) error {
	return affected(p.db.ExecContext(ctx,
		`UPDATE `+p.db.Schema+`."user" SET name=$2,email=$3,password_hash=$4,team_id=$5 WHERE user_id=$1;`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.TeamID))
}

// DeleteUser implements Datastore
func (p *Postgres) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return affected(p.db.ExecContext(ctx,
		`DELETE FROM `+p.db.Schema+`."user" WHERE user_id=$1;`, userID))
}

// CreateTeam implements Datastore
func (p *Postgres) CreateTeam(ctx context.Context, team *Team) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO `+p.db.Schema+`."team" (team_id,name,user_id,timestamp) VALUES($1,$2,$3,$4);`,
		team.ID, team.Name, team.UserID, team.CreatedAt.UTC())
	return translate(err)
}

// GetTeam implements Datastore
func (p *Postgres) GetTeam(ctx context.Context, teamID uuid.UUID) (*Team, error) {
	var team Team
	err := p.db.QueryRowContext(ctx,
		`SELECT team_id,name,user_id,timestamp FROM `+p.db.Schema+`."team" WHERE team_id=$1;`, teamID).
		Scan(&team.ID, &team.Name, &team.UserID, &team.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &team, nil
}

// UpdateTeam implements Datastore
func (p *Postgres) UpdateTeam(ctx context.Context, team *Team) error {
	return affected(p.db.ExecContext(ctx,
		`UPDATE `+p.db.Schema+`."team" SET name=$2 WHERE team_id=$1;`, team.ID, team.Name))
}

// DeleteTeam implements Datastore. Projects and resources are removed by cascade,
// members lose their team.
func (p *Postgres) DeleteTeam(ctx context.Context, teamID uuid.UUID) error {
	return affected(p.db.ExecContext(ctx,
		`DELETE FROM `+p.db.Schema+`."team" WHERE team_id=$1;`, teamID))
}

// CreateProject implements Datastore
func (p *Postgres) CreateProject(ctx context.Context, project *Project) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO `+p.db.Schema+`."project" (project_id,name,team_id,user_id,timestamp,updated_at) VALUES($1,$2,$3,$4,$5,$6);`,
		project.ID, project.Name, project.TeamID, project.UserID, project.CreatedAt.UTC(), project.UpdatedAt.UTC())
	return translate(err)
}

const projectColumns = "project_id,name,team_id,user_id,timestamp,updated_at"

func scanProject(row interface{ Scan(...interface{}) error }) (*Project, error) {
	var project Project
	err := row.Scan(&project.ID, &project.Name, &project.TeamID, &project.UserID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetProject implements Datastore
func (p *Postgres) GetProject(ctx context.Context, teamID, projectID uuid.UUID) (*Project, error) {
	project, err := scanProject(p.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM `+p.db.Schema+`."project" WHERE team_id=$1 AND project_id=$2;`,
		teamID, projectID))
	if err != nil {
		return nil, translate(err)
	}
	return project, nil
}

// ListProjects implements Datastore
func (p *Postgres) ListProjects(ctx context.Context, teamID uuid.UUID) ([]*Project, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM `+p.db.Schema+`."project" WHERE team_id=$1 ORDER BY timestamp,project_id;`,
		teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	projects := []*Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// UpdateProject implements Datastore
func (p *Postgres) UpdateProject(ctx context.Context, project *Project) error {
	return affected(p.db.ExecContext(ctx,
		`UPDATE `+p.db.Schema+`."project" SET name=$3,updated_at=$4 WHERE team_id=$1 AND project_id=$2;`,
		project.TeamID, project.ID, project.Name, project.UpdatedAt.UTC()))
}

// DeleteProject implements Datastore
func (p *Postgres) DeleteProject(ctx context.Context, teamID, projectID uuid.UUID) error {
	return affected(p.db.ExecContext(ctx,
		`DELETE FROM `+p.db.Schema+`."project" WHERE team_id=$1 AND project_id=$2;`, teamID, projectID))
}

// CreateResource implements Datastore
func (p *Postgres) CreateResource(ctx context.Context, r resource.Resource) error {
	properties, err := json.Marshal(r.ToDatastore())
	if err != nil {
		return err
	}
	meta := r.Meta()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO `+p.db.Schema+`."resource" (resource_id,project_id,type,properties) VALUES($1,$2,$3,$4);`,
		meta.ID, meta.ProjectID, string(r.Type()), string(properties))
	return translate(err)
}

// GetResource implements Datastore
func (p *Postgres) GetResource(ctx context.Context, projectID, resourceID uuid.UUID) (resource.Resource, error) {
	var properties []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT properties FROM `+p.db.Schema+`."resource" WHERE project_id=$1 AND resource_id=$2;`,
		projectID, resourceID).Scan(&properties)
	if err != nil {
		return nil, translate(err)
	}
	return decodeResource(resourceID, properties)
}

// ListResources implements Datastore
func (p *Postgres) ListResources(ctx context.Context, projectID uuid.UUID) ([]resource.Resource, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT resource_id,properties FROM `+p.db.Schema+`."resource" WHERE project_id=$1 ORDER BY timestamp,resource_id;`,
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	resources := []resource.Resource{}
	for rows.Next() {
		var id uuid.UUID
		var properties []byte
		if err := rows.Scan(&id, &properties); err != nil {
			return nil, err
		}
		r, err := decodeResource(id, properties)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Errorf("Error 4702: cannot decode resource %s", id)
			return nil, err
		}
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

// UpdateResource implements Datastore
func (p *Postgres) UpdateResource(ctx context.Context, r resource.Resource) error {
	properties, err := json.Marshal(r.ToDatastore())
	if err != nil {
		return err
	}
	meta := r.Meta()
	return affected(p.db.ExecContext(ctx,
		`UPDATE `+p.db.Schema+`."resource" SET properties=$3 WHERE project_id=$1 AND resource_id=$2;`,
		meta.ProjectID, meta.ID, string(properties)))
}

// DeleteResource implements Datastore
func (p *Postgres) DeleteResource(ctx context.Context, projectID, resourceID uuid.UUID) error {
	return affected(p.db.ExecContext(ctx,
		`DELETE FROM `+p.db.Schema+`."resource" WHERE project_id=$1 AND resource_id=$2;`, projectID, resourceID))
}
