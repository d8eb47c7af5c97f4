// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package resource

import "github.com/google/uuid"

// Image is a bitmap used as atom sprite or space background/foreground
type Image struct {
	Base
	Extension string
	Width     int
	Height    int
}

// NewImage returns an image with default values
func NewImage() *Image {
	return &Image{}
}

// Type returns TypeImage
func (i *Image) Type() Type { return TypeImage }

// DefaultName returns "New Image"
func (i *Image) DefaultName() string { return "New Image" }

func (i *Image) apply(json map[string]interface{}) {
	if extension, ok := stringValue(json, "extension"); ok {
		i.Extension = extension
	}
	if width, ok := intValue(json, "width"); ok && width >= 0 {
		i.Width = width
	}
	if height, ok := intValue(json, "height"); ok && height >= 0 {
		i.Height = height
	}
}

func (i *Image) reset() {
	i.Extension = ""
	i.Width = 0
	i.Height = 0
}

func (i *Image) fields() map[string]interface{} {
	return map[string]interface{}{
		"extension": i.Extension,
		"width":     i.Width,
		"height":    i.Height,
	}
}

// ToAPI implements Resource
func (i *Image) ToAPI() map[string]interface{} { return toAPI(i, &i.Base) }

// ToDatastore implements Resource
func (i *Image) ToDatastore() map[string]interface{} { return toDatastore(i, &i.Base) }

// FromAPIPost implements Resource
func (i *Image) FromAPIPost(json map[string]interface{}) { fromAPIPost(i, &i.Base, json) }

// FromAPIPatch implements Resource
func (i *Image) FromAPIPatch(json map[string]interface{}) { fromAPIPatch(i, &i.Base, json) }

// FromDatastore implements Resource
func (i *Image) FromDatastore(id uuid.UUID, json map[string]interface{}) {
	fromDatastore(i, &i.Base, id, json)
}

// ClientFromAPIGet implements Resource
func (i *Image) ClientFromAPIGet(json map[string]interface{}) { clientFromAPIGet(i, &i.Base, json) }
