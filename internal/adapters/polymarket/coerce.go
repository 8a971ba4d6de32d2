package polymarket

// coerce.go — coerción defensiva de los payloads de Polymarket.
// El API mezcla números, strings numéricos y arrays serializados como
// strings JSON; un campo ausente o corrupto coerciona a nil, nunca a error.

import (
	"encoding/json"
	"strconv"
	"strings"
)

// unmarshalRaw parsea un payload JSON guardado como string.
func unmarshalRaw(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}

// asFloat interpreta un RawMessage como número o string numérico.
func asFloat(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

// asInt64 interpreta un RawMessage como entero, número o string numérico.
func asInt64(raw json.RawMessage) *int64 {
	f := asFloat(raw)
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}

// asStringSlice interpreta un RawMessage como array de strings, o como un
// string que contiene un array JSON ("[\"0.62\", \"0.38\"]").
func asStringSlice(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err == nil {
		return out
	}
	var nested string
	if err := json.Unmarshal(raw, &nested); err == nil {
		if err := json.Unmarshal([]byte(nested), &out); err == nil {
			return out
		}
	}
	return nil
}

// asFloatSlice es asStringSlice seguido de parseo numérico por elemento.
func asFloatSlice(raw json.RawMessage) []*float64 {
	parts := asStringSlice(raw)
	out := make([]*float64, len(parts))
	for i, p := range parts {
		if f, err := strconv.ParseFloat(strings.TrimSpace(p), 64); err == nil {
			v := f
			out[i] = &v
		}
	}
	return out
}
