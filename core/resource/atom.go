// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package resource

import "github.com/google/uuid"

// Atom is a game entity. Events maps event names to their handler definitions,
// ImageID optionally references an image resource.
type Atom struct {
	Base
	Events  map[string]interface{}
	ImageID *string
}

// NewAtom returns an atom with default values
func NewAtom() *Atom {
	return &Atom{Events: map[string]interface{}{}}
}

// Type returns TypeAtom
func (a *Atom) Type() Type { return TypeAtom }

// DefaultName returns "New Atom"
func (a *Atom) DefaultName() string { return "New Atom" }

// SetEvents replaces the events of the atom
func (a *Atom) SetEvents(events map[string]interface{}) {
	a.Events = events
}

func (a *Atom) apply(json map[string]interface{}) {
	if events, ok := objectValue(json, "events"); ok {
		a.Events = copyObject(events)
	}
	if imageID, ok := nullableStringValue(json, "imageId"); ok {
		a.ImageID = imageID
	}
}

func (a *Atom) reset() {
	a.Events = nil
	a.ImageID = nil
}

func (a *Atom) fields() map[string]interface{} {
	events := a.Events
	if events == nil {
		events = map[string]interface{}{}
	}
	return map[string]interface{}{
		"events":  events,
		"imageId": a.ImageID,
	}
}

// ToAPI implements Resource
func (a *Atom) ToAPI() map[string]interface{} { return toAPI(a, &a.Base) }

// ToDatastore implements Resource
func (a *Atom) ToDatastore() map[string]interface{} { return toDatastore(a, &a.Base) }

// FromAPIPost implements Resource
func (a *Atom) FromAPIPost(json map[string]interface{}) { fromAPIPost(a, &a.Base, json) }

// FromAPIPatch implements Resource
func (a *Atom) FromAPIPatch(json map[string]interface{}) { fromAPIPatch(a, &a.Base, json) }

// FromDatastore implements Resource
func (a *Atom) FromDatastore(id uuid.UUID, json map[string]interface{}) {
	fromDatastore(a, &a.Base, id, json)
}

// ClientFromAPIGet implements Resource
func (a *Atom) ClientFromAPIGet(json map[string]interface{}) { clientFromAPIGet(a, &a.Base, json) }
