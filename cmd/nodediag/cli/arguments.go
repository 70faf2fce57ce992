// Copyright 2026 The Nodediag Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"reflect"
	"time"
)

// UnmarshalArguments decodes a JSON object into a params struct. The
// wire format it accepts is the one [ParamsSchema] publishes: in
// particular, [time.Duration] fields are advertised as strings with
// format "duration", so string values like "5s" are decoded with
// [time.ParseDuration]. Plain numbers are still accepted as
// nanoseconds for callers that marshal the Go representation directly.
//
// params must be a pointer to a struct.
func UnmarshalArguments(data []byte, params any) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return Internal("params must be a pointer to a struct, got %T", params)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if err := convertDurationStrings(value.Elem().Type(), fields); err != nil {
		return err
	}

	converted, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(converted, params)
}

// convertDurationStrings rewrites duration-string values ("250ms") to
// the nanosecond integers encoding/json expects for time.Duration
// targets. Embedded structs are walked the same way [buildObjectSchema]
// merges their properties into the parent schema.
func convertDurationStrings(structType reflect.Type, fields map[string]json.RawMessage) error {
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := convertDurationStrings(field.Type, fields); err != nil {
				return err
			}
			continue
		}
		if !field.IsExported() || field.Type != durationType {
			continue
		}

		name := jsonPropertyName(field)
		if name == "" || name == "-" {
			continue
		}
		raw, ok := fields[name]
		if !ok {
			continue
		}

		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			// Not a string: leave numbers for the standard decoder.
			continue
		}
		duration, err := time.ParseDuration(text)
		if err != nil {
			return Validation("argument %q: %w", name, err).
				WithHint(`durations are strings like "250ms" or "5s"`)
		}
		encoded, err := json.Marshal(int64(duration))
		if err != nil {
			return err
		}
		fields[name] = encoded
	}
	return nil
}
