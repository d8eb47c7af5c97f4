// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package resource

import "github.com/google/uuid"

// default dimensions of a new space and its camera
const (
	DefaultSpaceWidth  = 512
	DefaultSpaceHeight = 288
)

// Camera is the visible window onto a space
type Camera struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Instance is an atom plotted into a space
type Instance struct {
	AtomID string `json:"atomId"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Z      int    `json:"z"`
}

// Space is a level. BackgroundImage and ForegroundImage optionally reference
// image resources.
type Space struct {
	Base
	Width           int
	Height          int
	Camera          Camera
	BackgroundImage *string
	ForegroundImage *string
	Instances       []Instance
}

// NewSpace returns a space with default values
func NewSpace() *Space {
	return &Space{
		Width:  DefaultSpaceWidth,
		Height: DefaultSpaceHeight,
		Camera: Camera{
			Width:  DefaultSpaceWidth,
			Height: DefaultSpaceHeight,
		},
		Instances: []Instance{},
	}
}

// Type returns TypeSpace
func (s *Space) Type() Type { return TypeSpace }

// DefaultName returns "New Space"
func (s *Space) DefaultName() string { return "New Space" }

func (s *Space) apply(json map[string]interface{}) {
	if width, ok := intValue(json, "width"); ok && width >= 0 {
		s.Width = width
	}
	if height, ok := intValue(json, "height"); ok && height >= 0 {
		s.Height = height
	}
	if camera, ok := objectValue(json, "camera"); ok {
		if x, ok := intValue(camera, "x"); ok {
			s.Camera.X = x
		}
		if y, ok := intValue(camera, "y"); ok {
			s.Camera.Y = y
		}
		if width, ok := intValue(camera, "width"); ok && width >= 0 {
			s.Camera.Width = width
		}
		if height, ok := intValue(camera, "height"); ok && height >= 0 {
			s.Camera.Height = height
		}
	}
	if image, ok := nullableStringValue(json, "backgroundImage"); ok {
		s.BackgroundImage = image
	}
	if image, ok := nullableStringValue(json, "foregroundImage"); ok {
		s.ForegroundImage = image
	}
	if instances, ok := arrayValue(json, "instances"); ok {
		s.Instances = parseInstances(instances)
	}
}

// parseInstances drops entries which do not reference an atom
func parseInstances(array []interface{}) []Instance {
	instances := make([]Instance, 0, len(array))
	for _, element := range array {
		object, ok := element.(map[string]interface{})
		if !ok {
			continue
		}
		atomID, ok := stringValue(object, "atomId")
		if !ok || atomID == "" {
			continue
		}
		instance := Instance{AtomID: atomID}
		instance.X, _ = intValue(object, "x")
		instance.Y, _ = intValue(object, "y")
		instance.Z, _ = intValue(object, "z")
		instances = append(instances, instance)
	}
	return instances
}

func (s *Space) reset() {
	s.Width = 0
	s.Height = 0
	s.Camera = Camera{}
	s.BackgroundImage = nil
	s.ForegroundImage = nil
	s.Instances = nil
}

func (s *Space) fields() map[string]interface{} {
	instances := make([]interface{}, len(s.Instances))
	for i, instance := range s.Instances {
		instances[i] = map[string]interface{}{
			"atomId": instance.AtomID,
			"x":      instance.X,
			"y":      instance.Y,
			"z":      instance.Z,
		}
	}
	return map[string]interface{}{
		"width":  s.Width,
		"height": s.Height,
		"camera": map[string]interface{}{
			"x":      s.Camera.X,
			"y":      s.Camera.Y,
			"width":  s.Camera.Width,
			"height": s.Camera.Height,
		},
		"backgroundImage": s.BackgroundImage,
		"foregroundImage": s.ForegroundImage,
		"instances":       instances,
	}
}

// ToAPI implements Resource
func (s *Space) ToAPI() map[string]interface{} { return toAPI(s, &s.Base) }

// ToDatastore implements Resource
func (s *Space) ToDatastore() map[string]interface{} { return toDatastore(s, &s.Base) }

// FromAPIPost implements Resource
func (s *Space) FromAPIPost(json map[string]interface{}) { fromAPIPost(s, &s.Base, json) }

// FromAPIPatch implements Resource
func (s *Space) FromAPIPatch(json map[string]interface{}) { fromAPIPatch(s, &s.Base, json) }

// FromDatastore implements Resource
func (s *Space) FromDatastore(id uuid.UUID, json map[string]interface{}) {
	fromDatastore(s, &s.Base, id, json)
}

// ClientFromAPIGet implements Resource
func (s *Space) ClientFromAPIGet(json map[string]interface{}) { clientFromAPIGet(s, &s.Base, json) }
