// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*
Package resource implements the type system of user-authored game resources.

Every resource shares a Base (identity, name, ownership, timestamps) and adds
variant specific fields. The package knows four variants: atoms, sounds,
images and spaces. Variants are instantiated from their type tag with New or
Factory.

A resource moves between three JSON representations:

  - the API representation, sent to and received from REST clients (ToAPI,
    FromAPIPost, FromAPIPatch)
  - the datastore representation, which omits the identifier because the
    identifier is the datastore key (ToDatastore, FromDatastore)
  - the client representation, rehydrated verbatim from an API response
    (ClientFromAPIGet)

Incoming JSON is accepted leniently: a property of the wrong JSON kind is
ignored and the current value is kept.
*/
package resource

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type is the type tag of a resource
type Type string

// all supported resource types
const (
	TypeAtom  Type = "atom"
	TypeSound Type = "sound"
	TypeImage Type = "image"
	TypeSpace Type = "space"
)

// Types returns all supported resource types
func Types() []Type {
	return []Type{TypeAtom, TypeSound, TypeImage, TypeSpace}
}

// Resource is implemented by all resource variants
type Resource interface {
	// Meta returns the shared fields of the resource
	Meta() *Base
	// Type returns the type tag. It never changes after construction.
	Type() Type
	// DefaultName is the name given to a resource created without one
	DefaultName() string

	// ToAPI returns the representation sent to API clients
	ToAPI() map[string]interface{}
	// ToDatastore returns the representation persisted in the datastore
	ToDatastore() map[string]interface{}

	// FromAPIPost applies the body of a create request
	FromAPIPost(json map[string]interface{})
	// FromAPIPatch applies the body of a partial update request
	FromAPIPatch(json map[string]interface{})
	// FromDatastore rehydrates a resource from a stored document
	FromDatastore(id uuid.UUID, json map[string]interface{})
	// ClientFromAPIGet rehydrates a resource from an API response
	ClientFromAPIGet(json map[string]interface{})
}

// Base holds the fields every resource has
type Base struct {
	ID        uuid.UUID
	Name      string
	UserID    uuid.UUID
	TeamID    uuid.UUID
	ProjectID uuid.UUID
	CreatedAt int64
	UpdatedAt int64
}

// Meta returns the base itself
func (b *Base) Meta() *Base {
	return b
}

// Stamp records a modification at time now. The creation time is set only once.
func (b *Base) Stamp(now time.Time) {
	if b.CreatedAt == 0 {
		b.CreatedAt = now.Unix()
	}
	b.UpdatedAt = now.Unix()
}

// Key returns the storage key for files attached to the resource
func (b *Base) Key() string {
	return "/" + b.TeamID.String() + "/" + b.ProjectID.String() + "/" + b.ID.String()
}

func (b *Base) toDatastore(t Type) map[string]interface{} {
	return map[string]interface{}{
		"type":      string(t),
		"name":      b.Name,
		"userId":    b.UserID.String(),
		"teamId":    b.TeamID.String(),
		"projectId": b.ProjectID.String(),
		"createdAt": b.CreatedAt,
		"updatedAt": b.UpdatedAt,
	}
}

func (b *Base) toAPI(t Type) map[string]interface{} {
	r := b.toDatastore(t)
	r["id"] = b.ID.String()
	return r
}

func (b *Base) fromAPIPost(json map[string]interface{}, defaultName string) {
	if name, ok := stringValue(json, "name"); ok && name != "" {
		b.Name = name
	} else {
		b.Name = defaultName
	}
}

func (b *Base) fromAPIPatch(json map[string]interface{}) {
	if name, ok := stringValue(json, "name"); ok && name != "" {
		b.Name = name
	}
}

// load reads all base fields that carry the expected kind, keeping the others
func (b *Base) load(json map[string]interface{}) {
	if id, ok := uuidValue(json, "id"); ok {
		b.ID = id
	}
	if name, ok := stringValue(json, "name"); ok {
		b.Name = name
	}
	if id, ok := uuidValue(json, "userId"); ok {
		b.UserID = id
	}
	if id, ok := uuidValue(json, "teamId"); ok {
		b.TeamID = id
	}
	if id, ok := uuidValue(json, "projectId"); ok {
		b.ProjectID = id
	}
	if t, ok := integerValue(json, "createdAt"); ok {
		b.CreatedAt = t
	}
	if t, ok := integerValue(json, "updatedAt"); ok {
		b.UpdatedAt = t
	}
}

// FactoryError is returned when a resource type is not known
type FactoryError struct {
	Type string
}

func (e *FactoryError) Error() string {
	return fmt.Sprintf("[classes.factory] [resource] i dont understand resource type '%s'", e.Type)
}

// New returns a resource of type t with all fields set to their defaults
func New(t string) (Resource, error) {
	switch Type(t) {
	case TypeAtom:
		return NewAtom(), nil
	case TypeSound:
		return NewSound(), nil
	case TypeImage:
		return NewImage(), nil
	case TypeSpace:
		return NewSpace(), nil
	}
	return nil, &FactoryError{Type: t}
}

// Factory instantiates the variant for type t and initializes it from json.
// Properties of the wrong kind fall back to the variant's defaults.
func Factory(t string, json map[string]interface{}) (Resource, error) {
	r, err := New(t)
	if err != nil {
		return nil, err
	}
	r.Meta().load(json)
	if v, ok := r.(variant); ok {
		v.apply(json)
	}
	return r, nil
}

// FromDatastore instantiates a resource from a stored document. The type is
// read from the document.
func FromDatastore(id uuid.UUID, json map[string]interface{}) (Resource, error) {
	t, _ := stringValue(json, "type")
	r, err := New(t)
	if err != nil {
		return nil, err
	}
	r.FromDatastore(id, json)
	return r, nil
}

// variant is implemented by all resource variants and carries the parts that
// differ between them
type variant interface {
	Resource
	// apply copies the variant fields of the expected kind from json
	apply(json map[string]interface{})
	// reset sets the variant fields to their zero values
	reset()
	// fields returns the variant fields in their JSON form
	fields() map[string]interface{}
}

func toAPI(v variant, b *Base) map[string]interface{} {
	r := b.toAPI(v.Type())
	for key, value := range v.fields() {
		r[key] = value
	}
	return r
}

func toDatastore(v variant, b *Base) map[string]interface{} {
	r := b.toDatastore(v.Type())
	for key, value := range v.fields() {
		r[key] = value
	}
	return r
}

func fromAPIPost(v variant, b *Base, json map[string]interface{}) {
	b.fromAPIPost(json, v.DefaultName())
	v.apply(json)
}

func fromAPIPatch(v variant, b *Base, json map[string]interface{}) {
	b.fromAPIPatch(json)
	v.apply(json)
}

func fromDatastore(v variant, b *Base, id uuid.UUID, json map[string]interface{}) {
	b.load(json)
	b.ID = id
	v.apply(json)
}

func clientFromAPIGet(v variant, b *Base, json map[string]interface{}) {
	*b = Base{}
	b.load(json)
	v.reset()
	v.apply(json)
}
