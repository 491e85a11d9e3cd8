package backend

import (
	"bytes"
	"encoding/json"
	"tecrank_admin/internal/common"
)

const (
	ListField = "registros"
	OneField  = "registro"
)

// DecodeList unwraps {"registros": [...]}. A missing field or a non-array value is a
// malformed response, never an empty list.
func DecodeList[T any](body []byte) ([]T, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, common.NewMalformedError("expected an object with %q: %v", ListField, err)
	}
	raw, ok := envelope[ListField]
	if !ok {
		return nil, common.NewMalformedError("field %q is missing", ListField)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, common.NewMalformedError("field %q is not an array", ListField)
	}
	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, common.NewMalformedError("decoding %q: %v", ListField, err)
	}
	return items, nil
}

// DecodeOne accepts {"registro": {...}} or the bare object.
func DecodeOne[T any](body []byte) (*T, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, common.NewMalformedError("expected an object: %v", err)
	}
	raw := json.RawMessage(body)
	if inner, ok := envelope[OneField]; ok {
		inner = bytes.TrimSpace(inner)
		if len(inner) == 0 || inner[0] != '{' {
			return nil, common.NewMalformedError("field %q is not an object", OneField)
		}
		raw = inner
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, common.NewMalformedError("decoding record: %v", err)
	}
	return &out, nil
}
