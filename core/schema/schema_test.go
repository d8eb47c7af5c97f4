// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package schema_test

import (
	"testing"

	"github.com/gamemakerclub/api-core/core/resource"
	"github.com/gamemakerclub/api-core/core/schema"
)

const (
	ref1 = `{ "type" : "string" ,
		      "$id" : "http://some_host.com/string.json"}`
	ref2 = `{ "$id" : "http://some_host.com/maxlength.json",
	 		  "maxLength" : 5 }`

	topLevel = `
	{ "$id" : "http://some_host.com/top1.json",
	  "allOf" : [
		{ "$ref" : "http://some_host.com/string.json" },
		{ "$ref" : "http://some_host.com/maxlength.json" }
		]
	}`
)

func TestValidateString(t *testing.T) {
	v, err := schema.NewValidator([]string{topLevel}, []string{ref1, ref2})
	if err != nil {
		t.Fatalf("No error expected when creating validator, got %v", err)
	}

	schemaID := "http://some_host.com/top1.json"
	if err := v.ValidateString(`"short"`, schemaID); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := v.ValidateString(`"a very long string"`, schemaID); err == nil {
		t.Fatal("expected long string to be invalid")
	}
	if err := v.ValidateString(`"short"`, "http://some_host.com/unknown.json"); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}

func TestDefaultHasAllSchemas(t *testing.T) {
	v, err := schema.Default()
	if err != nil {
		t.Fatalf("cannot load embedded schemas: %v", err)
	}
	for _, typ := range resource.Types() {
		if !v.HasSchema(schema.ResourceID(string(typ))) {
			t.Fatalf("no schema for resource type %s", typ)
		}
	}
	for _, id := range []string{schema.IDUser, schema.IDNamed} {
		if !v.HasSchema(id) {
			t.Fatalf("%s schemaID is expected to be available", id)
		}
	}
	if v.HasSchema(schema.ResourceID("music")) {
		t.Fatal("music is not a resource type")
	}
}

func TestResourceSchemasAreLenientOnKinds(t *testing.T) {
	v, err := schema.Default()
	if err != nil {
		t.Fatal(err)
	}

	spaceID := schema.ResourceID("space")
	valid := map[string]interface{}{
		"type":   "space",
		"name":   "Level",
		"width":  1024.0,
		"camera": map[string]interface{}{"x": 0.0, "y": "not a number"},
	}
	if err := v.ValidateObject(valid, spaceID); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	tooWide := map[string]interface{}{"width": 5000.0}
	if err := v.ValidateObject(tooWide, spaceID); err == nil {
		t.Fatal("expected width above 4096 to be rejected")
	}

	loud := map[string]interface{}{"volume": 2.0}
	if err := v.ValidateObject(loud, schema.ResourceID("sound")); err == nil {
		t.Fatal("expected volume above 1 to be rejected")
	}
}

func TestUserSchema(t *testing.T) {
	v, err := schema.Default()
	if err != nil {
		t.Fatal(err)
	}
	if err := v.ValidateObject(map[string]interface{}{"email": "james@gamemaker.club", "password": "secret1"}, schema.IDUser); err != nil {
		t.Fatalf("expected valid user, got %v", err)
	}
	if err := v.ValidateObject(map[string]interface{}{"email": "james@gamemaker.club"}, schema.IDUser); err == nil {
		t.Fatal("expected missing password to be rejected")
	}
	if err := v.ValidateObject(map[string]interface{}{"email": "no-email", "password": "secret1"}, schema.IDUser); err == nil {
		t.Fatal("expected invalid email to be rejected")
	}
}
