// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package resource

import (
	"math"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

func stringValue(object map[string]interface{}, key string) (string, bool) {
	s, ok := object[key].(string)
	return s, ok
}

// nullableStringValue accepts a string or an explicit null
func nullableStringValue(object map[string]interface{}, key string) (*string, bool) {
	value, present := object[key]
	if !present {
		return nil, false
	}
	if value == nil {
		return nil, true
	}
	if s, ok := value.(string); ok {
		return &s, true
	}
	return nil, false
}

func uuidValue(object map[string]interface{}, key string) (uuid.UUID, bool) {
	s, ok := object[key].(string)
	if !ok {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

func objectValue(object map[string]interface{}, key string) (map[string]interface{}, bool) {
	o, ok := object[key].(map[string]interface{})
	return o, ok
}

func arrayValue(object map[string]interface{}, key string) ([]interface{}, bool) {
	a, ok := object[key].([]interface{})
	return a, ok
}

// numberValue accepts all numeric kinds a decoded or hand built document can carry
func numberValue(object map[string]interface{}, key string) (float64, bool) {
	switch n := object[key].(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// integerValue is numberValue floored to an integer
func integerValue(object map[string]interface{}, key string) (int64, bool) {
	f, ok := numberValue(object, key)
	if !ok {
		return 0, false
	}
	return int64(math.Floor(f)), true
}

func intValue(object map[string]interface{}, key string) (int, bool) {
	i, ok := integerValue(object, key)
	return int(i), ok
}

// copyObject returns a deep copy of a JSON object so callers cannot alias
// resource state
func copyObject(object map[string]interface{}) map[string]interface{} {
	if object == nil {
		return nil
	}
	data, err := json.Marshal(object)
	if err != nil {
		return map[string]interface{}{}
	}
	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		return map[string]interface{}{}
	}
	return result
}
