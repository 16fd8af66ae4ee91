package membership

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// flagKeys are the object members accepted as a positive flag.
var flagKeys = []string{"data", "success", "valid"}

// ParsePayload classifies a response body into a named shape. Only
// ShapeMalformed comes with an error.
//
//	true, "true"                       positive scalar
//	{data|success|valid: true|"true"}  ShapeObjectFlag
//	false, "false", null, {..}, empty  ShapeNegative
//	anything else                      ShapeUnrecognized
func ParsePayload(body []byte) (Shape, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ShapeNegative, nil
	}

	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return ShapeMalformed, fmt.Errorf("malformed membership payload: %w", err)
	}

	switch t := v.(type) {
	case nil:
		return ShapeNegative, nil
	case bool:
		if t {
			return ShapeBoolTrue, nil
		}
		return ShapeNegative, nil
	case string:
		switch t {
		case "true":
			return ShapeStringTrue, nil
		case "false":
			return ShapeNegative, nil
		}
		return ShapeUnrecognized, nil
	case map[string]interface{}:
		for _, key := range flagKeys {
			if isTruthy(t[key]) {
				return ShapeObjectFlag, nil
			}
		}
		return ShapeNegative, nil
	default:
		return ShapeUnrecognized, nil
	}
}

func isTruthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	}
	return false
}
