// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package resource

import "github.com/google/uuid"

// Sound is an audio clip. Extension is the file extension of the uploaded
// audio file, empty as long as nothing has been uploaded.
type Sound struct {
	Base
	Extension string
	Volume    float64
}

// NewSound returns a sound with default values
func NewSound() *Sound {
	return &Sound{Volume: 1}
}

// Type returns TypeSound
func (s *Sound) Type() Type { return TypeSound }

// DefaultName returns "New Sound"
func (s *Sound) DefaultName() string { return "New Sound" }

func (s *Sound) apply(json map[string]interface{}) {
	if extension, ok := stringValue(json, "extension"); ok {
		s.Extension = extension
	}
	if volume, ok := numberValue(json, "volume"); ok && volume >= 0 && volume <= 1 {
		s.Volume = volume
	}
}

func (s *Sound) reset() {
	s.Extension = ""
	s.Volume = 0
}

func (s *Sound) fields() map[string]interface{} {
	return map[string]interface{}{
		"extension": s.Extension,
		"volume":    s.Volume,
	}
}

// ToAPI implements Resource
func (s *Sound) ToAPI() map[string]interface{} { return toAPI(s, &s.Base) }

// ToDatastore implements Resource
func (s *Sound) ToDatastore() map[string]interface{} { return toDatastore(s, &s.Base) }

// FromAPIPost implements Resource
func (s *Sound) FromAPIPost(json map[string]interface{}) { fromAPIPost(s, &s.Base, json) }

// FromAPIPatch implements Resource
func (s *Sound) FromAPIPatch(json map[string]interface{}) { fromAPIPatch(s, &s.Base, json) }

// FromDatastore implements Resource
func (s *Sound) FromDatastore(id uuid.UUID, json map[string]interface{}) {
	fromDatastore(s, &s.Base, id, json)
}

// ClientFromAPIGet implements Resource
func (s *Sound) ClientFromAPIGet(json map[string]interface{}) { clientFromAPIGet(s, &s.Base, json) }
