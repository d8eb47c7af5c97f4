// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

//go:build integration

package test

import (
	"context"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/gamemakerclub/api-core/core"
	"github.com/gamemakerclub/api-core/core/client"
	"github.com/gamemakerclub/api-core/core/notify"
)

type NotificationOrderTestSuite struct {
	IntegrationTestSuite
}

func TestNotificationOrderTestSuite(t *testing.T) {
	ts := &NotificationOrderTestSuite{}
	suite.Run(t, ts)
}

// member creates a user with a team and a project
func (s *NotificationOrderTestSuite) member() (client.Client, uuid.UUID) {
	email := uuid.New().String() + "@gamemaker.club"
	password := uuid.New().String()
	_, err := s.client.RawPost("/v1/users", map[string]string{"name": "James", "email": email, "password": password}, nil)
	s.Require().NoError(err)
	auth := s.client.WithBasicAuth(email, password)

	var team map[string]interface{}
	_, err = auth.RawPost("/v1/teams", map[string]string{"name": "FatQuack"}, &team)
	s.Require().NoError(err)
	_, err = auth.RawPatch("/v1/me", map[string]interface{}{"teamId": team["id"]}, nil)
	s.Require().NoError(err)

	var project map[string]interface{}
	_, err = auth.Projects().Create(map[string]string{"name": "Angry Birds"}, &project)
	s.Require().NoError(err)
	return auth, uuid.MustParse(project["id"].(string))
}

// TestProjectsFlow walks through the lifecycle against Postgres over real HTTP
func (s *NotificationOrderTestSuite) TestProjectsFlow() {
	auth, projectID := s.member()
	resources := auth.Resources(projectID)

	status, err := resources.Create(map[string]string{"type": "qweqweqwe"}, nil)
	s.Equal(http.StatusBadRequest, status)
	var statusError *client.StatusError
	s.Require().ErrorAs(err, &statusError)
	s.Equal("this would not get created ([classes.factory] [resource] i dont understand resource type 'qweqweqwe')", statusError.Message)

	var sound map[string]interface{}
	status, err = resources.Create(map[string]string{"type": "sound", "name": "Bird Sound"}, &sound)
	s.Require().NoError(err)
	s.Equal(http.StatusCreated, status)

	var list []map[string]interface{}
	_, err = resources.List(&list)
	s.Require().NoError(err)
	s.Len(list, 1)

	_, err = resources.Item(uuid.MustParse(sound["id"].(string))).Delete()
	s.Require().NoError(err)
	_, err = auth.Projects().Item(projectID).Delete()
	s.Require().NoError(err)
	status, err = auth.RawDelete("/v1/me/team")
	s.Require().NoError(err)
	s.Equal(http.StatusNoContent, status)
	status, err = auth.RawDelete("/v1/me")
	s.Require().NoError(err)
	s.Equal(http.StatusNoContent, status)
}

// TestNotificationOrdering verifies that all updates of one resource arrive in order
func (s *NotificationOrderTestSuite) TestNotificationOrdering() {
	auth, projectID := s.member()
	resources := auth.Resources(projectID)

	ids := make([]string, 5)
	for i := range ids {
		var created map[string]interface{}
		_, err := resources.Create(map[string]string{"type": "space"}, &created)
		s.Require().NoError(err)
		ids[i] = created["id"].(string)
	}

	expectedSequence := make(map[string][]int, len(ids))
	for i := 0; i < 100; i++ {
		id := ids[rand.Intn(len(ids))]
		expectedSequence[id] = append(expectedSequence[id], i)
		_, err := resources.Item(uuid.MustParse(id)).Patch(map[string]interface{}{"width": i}, nil)
		s.Require().NoError(err, "Failed to patch space")
	}

	reader := s.reader("ordering-" + uuid.New().String())
	defer reader.Close()
	processedSequence := make(map[string][]int, len(ids))
	count := 0
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for count < 100 {
		m, err := reader.ReadMessage(ctx)
		s.Require().NoError(err)
		var envelope notify.Envelope
		s.Require().NoError(json.Unmarshal(m.Value, &envelope))
		if envelope.Resource != "resource" || envelope.Operation != core.OperationUpdate {
			continue
		}
		if _, ok := expectedSequence[envelope.ID]; !ok {
			continue
		}
		s.Equal(envelope.ID, string(m.Key))
		var space struct {
			Width int `json:"width"`
		}
		s.Require().NoError(json.Unmarshal(envelope.Payload, &space))
		processedSequence[envelope.ID] = append(processedSequence[envelope.ID], space.Width)
		count++
	}

	require.EqualValues(s.T(), expectedSequence, processedSequence, "Processed sequences do not match expected sequences")
}
