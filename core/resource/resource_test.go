// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package resource_test

import (
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamemakerclub/api-core/core/resource"
)

func asObject(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var object map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &object))
	return object
}

func TestFactoryKnownTypes(t *testing.T) {
	for _, typ := range resource.Types() {
		r, err := resource.Factory(string(typ), map[string]interface{}{})
		require.NoError(t, err)
		assert.Equal(t, typ, r.Type())
		assert.Equal(t, string(typ), r.ToAPI()["type"])
	}
}

func TestFactoryUnknownType(t *testing.T) {
	_, err := resource.Factory("qweqweqwe", map[string]interface{}{"type": "qweqweqwe"})
	require.Error(t, err)

	var factoryError *resource.FactoryError
	require.True(t, errors.As(err, &factoryError))
	assert.Equal(t, "qweqweqwe", factoryError.Type)
	assert.Equal(t, "[classes.factory] [resource] i dont understand resource type 'qweqweqwe'", err.Error())

	_, err = resource.New("")
	assert.Error(t, err)
}

func TestAtomDefaults(t *testing.T) {
	a := resource.NewAtom()
	a.FromAPIPost(map[string]interface{}{})

	api := a.ToAPI()
	assert.Equal(t, "New Atom", api["name"])
	assert.Equal(t, map[string]interface{}{}, api["events"])
	assert.Nil(t, api["imageId"])
}

func TestAtomCoercion(t *testing.T) {
	a := resource.NewAtom()
	a.FromAPIPost(asObject(t, `{"name":"Bird","events":{"onCreate":[]},"imageId":"img-1"}`))
	assert.Equal(t, "Bird", a.Name)
	require.NotNil(t, a.ImageID)
	assert.Equal(t, "img-1", *a.ImageID)
	assert.Contains(t, a.Events, "onCreate")

	// wrong kinds are ignored
	a.FromAPIPatch(asObject(t, `{"name":42,"events":"nope","imageId":7}`))
	assert.Equal(t, "Bird", a.Name)
	assert.Equal(t, "img-1", *a.ImageID)
	assert.Contains(t, a.Events, "onCreate")

	// events must be an object, null and arrays keep the current events
	a.FromAPIPatch(asObject(t, `{"events":null}`))
	assert.Contains(t, a.Events, "onCreate")
	a.FromAPIPatch(asObject(t, `{"events":[]}`))
	assert.Contains(t, a.Events, "onCreate")

	// an explicit null clears the image
	a.FromAPIPatch(asObject(t, `{"imageId":null}`))
	assert.Nil(t, a.ImageID)

	a.SetEvents(map[string]interface{}{"onStep": []interface{}{}})
	assert.Contains(t, a.ToAPI()["events"], "onStep")
}

func TestPatchKeepsNameWhenEmpty(t *testing.T) {
	s := resource.NewSound()
	s.FromAPIPost(asObject(t, `{"name":"Bird Sound"}`))
	s.FromAPIPatch(asObject(t, `{"name":""}`))
	assert.Equal(t, "Bird Sound", s.Name)
	assert.Equal(t, 1.0, s.Volume)

	s.FromAPIPatch(asObject(t, `{"volume":0.25}`))
	assert.Equal(t, 0.25, s.Volume)
	s.FromAPIPatch(asObject(t, `{"volume":3}`))
	assert.Equal(t, 0.25, s.Volume)
}

func TestSpace(t *testing.T) {
	s := resource.NewSpace()
	s.FromAPIPost(map[string]interface{}{})
	assert.Equal(t, "New Space", s.Name)
	assert.Equal(t, resource.DefaultSpaceWidth, s.Width)
	assert.Equal(t, resource.Camera{Width: 512, Height: 288}, s.Camera)

	s.FromAPIPatch(asObject(t, `{
		"width": 1024.7,
		"camera": {"x": 10, "y": "bad", "width": 320, "height": 180},
		"backgroundImage": "bg",
		"instances": [
			{"atomId": "a1", "x": 1, "y": 2, "z": 3},
			{"x": 4},
			"garbage"
		]
	}`))
	assert.Equal(t, 1024, s.Width)
	assert.Equal(t, resource.DefaultSpaceHeight, s.Height)
	assert.Equal(t, resource.Camera{X: 10, Y: 0, Width: 320, Height: 180}, s.Camera)
	require.NotNil(t, s.BackgroundImage)
	assert.Equal(t, "bg", *s.BackgroundImage)
	assert.Nil(t, s.ForegroundImage)
	assert.Equal(t, []resource.Instance{{AtomID: "a1", X: 1, Y: 2, Z: 3}}, s.Instances)
}

func TestDatastoreRoundtrip(t *testing.T) {
	now := time.Unix(1700000000, 0)
	in := resource.NewSpace()
	in.FromAPIPost(asObject(t, `{"name":"Level 1","instances":[{"atomId":"a","x":1,"y":2,"z":0}]}`))
	in.ID = uuid.New()
	in.UserID = uuid.New()
	in.TeamID = uuid.New()
	in.ProjectID = uuid.New()
	in.Stamp(now)

	doc := in.ToDatastore()
	assert.NotContains(t, doc, "id")
	assert.Contains(t, in.ToAPI(), "id")

	// datastore documents travel as JSON
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	var stored map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &stored))

	out, err := resource.FromDatastore(in.ID, stored)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, now.Unix(), out.Meta().CreatedAt)
}

func TestStamp(t *testing.T) {
	i := resource.NewImage()
	i.Stamp(time.Unix(100, 0))
	i.Stamp(time.Unix(200, 0))
	assert.Equal(t, int64(100), i.CreatedAt)
	assert.Equal(t, int64(200), i.UpdatedAt)
}

func TestClientFromAPIGet(t *testing.T) {
	a := resource.NewAtom()
	a.FromAPIPost(asObject(t, `{"name":"Bird","imageId":"x"}`))
	a.ID = uuid.New()

	api, err := json.Marshal(a.ToAPI())
	require.NoError(t, err)

	client := resource.NewAtom()
	client.ClientFromAPIGet(asObject(t, string(api)))
	assert.Equal(t, a.ID, client.ID)
	assert.Equal(t, "Bird", client.Name)
	assert.Equal(t, "x", *client.ImageID)

	// missing fields become zero values, not defaults
	empty := resource.NewSpace()
	empty.ClientFromAPIGet(map[string]interface{}{"id": a.ID.String()})
	assert.Equal(t, 0, empty.Width)
	assert.Equal(t, a.ID, empty.ID)
	assert.Empty(t, empty.Name)
}

func TestFromDatastoreUnknownType(t *testing.T) {
	_, err := resource.FromDatastore(uuid.New(), map[string]interface{}{"type": "music"})
	assert.Error(t, err)
}
