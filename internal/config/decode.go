package config

import (
	"reflect"
	"slices"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

// decodeKeys is a generic helper to unmarshal an INI key map into a strongly-typed struct
// using `ini` tags. It uses weak typing to handle string-to-int conversions and
// reports keys that no field consumed.
func decodeKeys[T any](values map[string]string, result *T) ([]string, error) {
	var md mapstructure.Metadata

	config := &mapstructure.DecoderConfig{
		Result:           result,
		WeaklyTypedInput: true,
		TagName:          "ini",
		Metadata:         &md,
		DecodeHook:       decimalIntHook,
	}

	decoder, err := mapstructure.NewDecoder(config)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(values); err != nil {
		return nil, err
	}

	slices.Sort(md.Unused)
	return md.Unused, nil
}

// decimalIntHook parses strings bound for int fields as base 10.
// The weak decoder alone infers the base from prefixes, reading "010" as 8 and "0x3" as 3.
func decimalIntHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Int {
		return data, nil
	}

	s := data.(string)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
