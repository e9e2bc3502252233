package toon

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Marshal serializes a Go value as a TOON document. *Value trees are
// encoded directly; dynamic containers go through the native bridge;
// structs and anything else the bridge cannot translate are
// normalized through encoding/json first, so json struct tags apply.
func Marshal(v interface{}) ([]byte, error) {
	val, err := toValue(v)
	if err != nil {
		return nil, err
	}
	s, err := Encode(val)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func toValue(v interface{}) (*Value, error) {
	val, err := FromNative(v)
	if err == nil {
		return val, nil
	}
	if !errors.Is(err, errUnsupported) {
		return nil, err
	}
	data, jerr := json.Marshal(v)
	if jerr != nil {
		return nil, fmt.Errorf("toon: cannot marshal %T: %w", v, jerr)
	}
	return FromJSON(data)
}

// Unmarshal parses a TOON document and stores the result in out.
// out may be a **Value to receive the raw tree, a *interface{} or
// *map[string]interface{} for dynamic containers, or a struct pointer,
// which is populated field-by-field (tag name "toon", weakly typed).
func Unmarshal(data []byte, out interface{}) error {
	val, err := DecodeString(string(data))
	if err != nil {
		return err
	}
	switch o := out.(type) {
	case **Value:
		*o = val
		return nil
	case *interface{}:
		*o = val.ToNative()
		return nil
	case *map[string]interface{}:
		m, ok := val.ToNative().(map[string]interface{})
		if !ok {
			return fmt.Errorf("toon: document is %s, not a map", val.Kind())
		}
		*o = m
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "toon",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(val.ToNative())
}
