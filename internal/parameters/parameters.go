// Package parameters handles generic configuration Params, a map[string]string that the
// user can set with a configuration string like "triplet_margin,margin=0.5,reduction=sum".
package parameters

import (
	"github.com/janpfeifer/lossopts/internal/generics"
	"github.com/pkg/errors"
	"strconv"
	"strings"
)

// Params represent generic configuration parameters.
type Params map[string]string

// NewFromConfigString create params from user's configuration string.
// Parts are separated by commas, and each part is either a "key=value" or a "key" alone, in which
// case the value is empty. Spaces around keys and values are trimmed and empty parts are ignored.
//
// See GetParamOr and PopParamOr to parse values from this map.
func NewFromConfigString(config string) Params {
	params := make(Params)
	parts := strings.Split(config, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		subParts := strings.SplitN(part, "=", 2) // Split into up to 2 parts to handle '=' in values
		key := strings.TrimSpace(subParts[0])
		if len(subParts) == 1 {
			params[key] = ""
		} else {
			params[key] = strings.TrimSpace(subParts[1])
		}
	}
	return params
}

// String returns the configuration string that would generate these params, with keys sorted.
func (params Params) String() string {
	parts := make([]string, 0, len(params))
	for key := range generics.SortedKeys(params) {
		if value := params[key]; value != "" {
			parts = append(parts, key+"="+value)
		} else {
			parts = append(parts, key)
		}
	}
	return strings.Join(parts, ",")
}

// CheckAllUsed returns an error listing the keys still left in params.
// It is meant to be used after all known parameters were consumed with PopParamOr.
func CheckAllUsed(params Params) error {
	if len(params) == 0 {
		return nil
	}
	var keys []string
	for key := range generics.SortedKeys(params) {
		keys = append(keys, key)
	}
	return errors.Errorf("unknown parameters \"%s\"", strings.Join(keys, "\", \""))
}

// PopParamOr is like GetParamOr, but it also deletes from the params map the retrieved parameter.
func PopParamOr[T interface {
	bool | int | float32 | float64 | string
}](params Params, key string, defaultValue T) (T, error) {
	value, err := GetParamOr(params, key, defaultValue)
	if err != nil {
		return value, err
	}
	delete(params, key)
	return value, nil
}

// GetParamOr attempts to parse a parameter to the given type if the key is present, or returns the defaultValue
// if not.
//
// For bool types, a key without a value is interpreted as true.
func GetParamOr[T interface {
	bool | int | float32 | float64 | string
}](params Params, key string, defaultValue T) (T, error) {
	vAny := (any)(defaultValue)
	var t T
	toT := func(v any) T { return v.(T) }
	switch vAny.(type) {
	case string:
		if value, exists := params[key]; exists {
			return toT(value), nil
		}
	case int:
		if value, exists := params[key]; exists && value != "" {
			parsedValue, err := strconv.Atoi(value)
			if err != nil {
				return t, errors.Wrapf(err, "failed to parse configuration %s=%q to int", key, value)
			}
			return toT(parsedValue), nil
		}
	case float32:
		if value, exists := params[key]; exists && value != "" {
			parsedValue, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return t, errors.Wrapf(err, "failed to parse configuration %s=%q to float", key, value)
			}
			return toT(float32(parsedValue)), nil
		}
	case float64:
		if value, exists := params[key]; exists && value != "" {
			parsedValue, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return t, errors.Wrapf(err, "failed to parse configuration %s=%q to float", key, value)
			}
			return toT(parsedValue), nil
		}
	case bool:
		if value, exists := params[key]; exists {
			if value == "" || strings.ToLower(value) == "true" || value == "1" { // Empty value is considered "true"
				return toT(true), nil
			}
			if strings.ToLower(value) == "false" || value == "0" {
				return toT(false), nil
			}
			return defaultValue, errors.Errorf("failed to parse configuration %s=%q to bool", key, value)
		}
	}
	return defaultValue, nil
}
