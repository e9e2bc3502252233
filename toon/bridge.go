package toon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ============================================================
// Native Bridge
// ============================================================
//
// Converts between the Value model and Go's dynamic containers.
// Go maps are unordered, so map input is bridged with sorted keys to
// keep encoding deterministic; documents built from Entry slices or
// decoded from JSON keep their original order.

// errUnsupported marks a Go type the bridge cannot translate directly;
// Marshal falls back to the JSON route for those.
var errUnsupported = errors.New("toon: unsupported type")

// FromNative converts a Go dynamic value (scalars, slices, string-keyed
// maps) to a Value. NaN and infinities are rejected.
func FromNative(v interface{}) (*Value, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil

	case *Value:
		return val, nil

	case bool:
		return Bool(val), nil

	case string:
		return Str(val), nil

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
		n, err := cast.ToInt64E(val)
		if err != nil {
			return nil, err
		}
		return Int(n), nil

	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("toon: integer %d overflows int64", val)
		}
		return Int(int64(val)), nil

	case float32:
		return FromNative(float64(val))

	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("toon: non-finite float %v is not representable", val)
		}
		return Float(val), nil

	case json.Number:
		return numberValue(val)

	case []interface{}:
		elems := make([]*Value, len(val))
		for i, el := range val {
			gv, err := FromNative(el)
			if err != nil {
				return nil, err
			}
			elems[i] = gv
		}
		return List(elems...), nil

	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, len(keys))
		for i, k := range keys {
			gv, err := FromNative(val[k])
			if err != nil {
				return nil, err
			}
			entries[i] = Entry{Key: k, Value: gv}
		}
		return Map(entries...), nil
	}

	return fromNativeReflect(v)
}

// fromNativeReflect handles typed slices and string-keyed maps that
// the direct switch missed, e.g. []string or map[string]int.
func fromNativeReflect(v interface{}) (*Value, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]*Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			gv, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			elems[i] = gv
		}
		return List(elems...), nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map with %s keys", errUnsupported, rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		entries := make([]Entry, len(keys))
		for i, k := range keys {
			gv, err := FromNative(rv.MapIndex(reflect.ValueOf(k)).Interface())
			if err != nil {
				return nil, err
			}
			entries[i] = Entry{Key: k, Value: gv}
		}
		return Map(entries...), nil
	}
	return nil, fmt.Errorf("%w: %T", errUnsupported, v)
}

// ToNative converts a Value to Go dynamic containers: nil, bool,
// int64, float64, string, []interface{}, map[string]interface{}.
// Map key order is not representable in a Go map and is lost.
func (v *Value) ToNative() interface{} {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.boolVal
	case KindInt:
		return v.intVal
	case KindFloat:
		return v.floatVal
	case KindString:
		return v.strVal
	case KindList:
		out := make([]interface{}, len(v.listVal))
		for i, el := range v.listVal {
			out[i] = el.ToNative()
		}
		return out
	case KindMap:
		out := make(map[string]interface{}, len(v.mapVal))
		for _, e := range v.mapVal {
			out[e.Key] = e.Value.ToNative()
		}
		return out
	default:
		return nil
	}
}

// ============================================================
// JSON Bridge
// ============================================================

// FromJSON converts a JSON document to a Value. Object key order is
// preserved by walking the token stream, and numbers without a
// fraction or exponent stay integers.
func FromJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := jsonValue(dec)
	if err != nil {
		return nil, fmt.Errorf("toon: invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("toon: trailing data after JSON value")
	}
	return v, nil
}

func jsonValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var entries []Entry
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string")
				}
				val, err := jsonValue(dec)
				if err != nil {
					return nil, err
				}
				entries = append(entries, Entry{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // closing }
				return nil, err
			}
			return Map(entries...), nil
		case '[':
			var elems []*Value
			for dec.More() {
				el, err := jsonValue(dec)
				if err != nil {
					return nil, err
				}
				elems = append(elems, el)
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return nil, err
			}
			return List(elems...), nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return Str(t), nil
	case json.Number:
		return numberValue(t)
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func numberValue(n json.Number) (*Value, error) {
	if !strings.ContainsAny(n.String(), ".eE") {
		i, err := n.Int64()
		if err == nil {
			return Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, err
	}
	return Float(f), nil
}

// ToJSON converts a Value to JSON, preserving map key order.
func (v *Value) ToJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v *Value) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.boolVal))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.intVal, 10))
	case KindFloat:
		b, err := json.Marshal(v.floatVal)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindString:
		b, err := json.Marshal(v.strVal)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindList:
		buf.WriteByte('[')
		for i, el := range v.listVal {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, el); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, e := range v.mapVal {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(e.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := writeJSON(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
