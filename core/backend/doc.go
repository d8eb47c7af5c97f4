// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package backend implements the gamemaker.club REST backend

A backend manages users, teams, projects and the resources of the game editor
in a datastore and provides a RESTful-API for them. All routes except the
creation of users require authentication, either HTTP basic authentication
with email and password or a bearer token issued by POST /v1/me/tokens.

A user can be member of one team. All project and resource routes act on the
team of the authenticated user, a user without team gets http.StatusNotFound.

This creates the following REST routes:
	POST /v1/users
	GET /v1/me
	PATCH /v1/me
	DELETE /v1/me
	POST /v1/me/tokens
	POST /v1/teams
	GET /v1/me/team
	PATCH /v1/me/team
	DELETE /v1/me/team
	GET /v1/me/team/projects
	POST /v1/me/team/projects
	GET /v1/me/team/projects/{project_id}
	PATCH /v1/me/team/projects/{project_id}
	DELETE /v1/me/team/projects/{project_id}
	GET /v1/me/team/projects/{project_id}/resources
	POST /v1/me/team/projects/{project_id}/resources
	GET /v1/me/team/projects/{project_id}/resources/{resource_id}
	PATCH /v1/me/team/projects/{project_id}/resources/{resource_id}
	DELETE /v1/me/team/projects/{project_id}/resources/{resource_id}
	PUT /v1/me/team/projects/{project_id}/resources/{resource_id}/file
	GET /v1/me/team/projects/{project_id}/resources/{resource_id}/file
	GET /version
	GET /health

The models look like this:

	User
	{
		"id": UUID,
		"name": STRING,
		"email": STRING,
		"teamId": UUID or null,
		"createdAt": UNIX SECONDS
	}

	Team
	{
		"id": UUID,
		"name": STRING,
		"userId": UUID,
		"createdAt": UNIX SECONDS
	}

	Project
	{
		"id": UUID,
		"name": STRING,
		"teamId": UUID,
		"userId": UUID,
		"createdAt": UNIX SECONDS,
		"updatedAt": UNIX SECONDS
	}

Resources carry the same ownership fields plus "projectId", a "type" which is one
of atom, sound, image or space, and the fields of their type, see package resource.
Creating a resource with an unknown type fails with http.StatusBadRequest:

	{
		"message": "this would not get created ([classes.factory] [resource] i dont understand resource type 'qweqweqwe')"
	}

Image and sound resources can store one file each. Uploading a file sets the
"extension" of the resource from the content type of the upload. Files are
removed together with their resource, project or team.

Every change emits a notification with the JSON of the entity, see package notify.

Errors

Errors are returned as {"message": STRING}. Unexpected failures are logged with an error
code, the response then only carries the code, e.g. "Error 4711".
*/
package backend
