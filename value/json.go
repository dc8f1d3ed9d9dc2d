package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FromJSON decodes JSON text into a Value tree. Uses encoding/json (stdlib)
// rather than a third-party codec: no example repo in the retrieval pack
// imports a third-party JSON library from real source (segmentio/encoding,
// goccy/go-json, json-iterator/go appear only as transitive go.mod entries
// in other repos' manifests, never imported), so stdlib is the corpus
// default for this concern.
func FromJSON(data []byte) (Value, error) {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("value: invalid JSON: %w", err)
	}
	return fromAny(raw)
}

func fromAny(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("value: invalid number %q: %w", v.String(), err)
		}
		return Number(f), nil
	case float64:
		return Number(v), nil
	case string:
		return String(v), nil
	case []any:
		out := make(Array, len(v))
		for i, e := range v {
			cv, err := fromAny(e)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case map[string]any:
		out := make(Object, len(v))
		for k, e := range v {
			cv, err := fromAny(e)
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value: cannot convert %T to Value", raw)
	}
}
