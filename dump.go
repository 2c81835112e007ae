package blocklog

import (
	"fmt"
	"reflect"
	"sort"
)

// ObjectDump is the serialized form of one value attached to an event
// through DumpObjects. Type carries the original Go type name, which
// would otherwise be lost when the event is encoded.
type ObjectDump struct {
	Type   string        `json:"type"`
	Fields []ObjectField `json:"fields,omitempty"`
	Repr   string        `json:"repr,omitempty"`
}

// ObjectField is a single key/value pair of a dumped object, kept as an
// ordered list so struct field order survives serialization.
type ObjectField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DumpObjects converts arbitrary values into the event representation the
// objects block renders: exported struct fields in declaration order, map
// entries in sorted key order, and a verbatim representation for
// everything else. Attach the result to an event under the objects key:
//
//	log.Info().Interface("objects", blocklog.DumpObjects(order, client)).Msg("checkout failed")
func DumpObjects(vs ...any) []ObjectDump {
	out := make([]ObjectDump, 0, len(vs))
	for _, v := range vs {
		out = append(out, dumpObject(v))
	}
	return out
}

func dumpObject(v any) (dump ObjectDump) {
	defer func() {
		if r := recover(); r != nil {
			dump = ObjectDump{Type: dump.Type, Repr: unrepresentable}
		}
	}()

	if v == nil {
		return ObjectDump{Type: "nil", Repr: noneMarker}
	}

	val := reflect.ValueOf(v)

	// Unwrap interfaces and pointers; nil links render as the marker.
	for val.Kind() == reflect.Interface || val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return ObjectDump{Type: val.Type().String(), Repr: noneMarker}
		}
		val = val.Elem()
	}

	typ := val.Type()
	dump.Type = typ.Name()
	if dump.Type == emptyString {
		dump.Type = typ.String()
	}

	switch val.Kind() {
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			fieldVal := val.Field(i)
			if !fieldVal.CanInterface() {
				continue
			}
			dump.Fields = append(dump.Fields, ObjectField{
				Key:   field.Name,
				Value: stringify(fieldVal.Interface()),
			})
		}
		if len(dump.Fields) == 0 {
			dump.Repr = fmt.Sprintf("%+v", v)
		}

	case reflect.Map:
		keys := make([]string, 0, val.Len())
		byKey := make(map[string]ObjectField, val.Len())
		iter := val.MapRange()
		for iter.Next() {
			k := stringify(iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = ObjectField{Key: k, Value: stringify(iter.Value().Interface())}
		}
		sort.Strings(keys)
		for _, k := range keys {
			dump.Fields = append(dump.Fields, byKey[k])
		}

	default:
		dump.Repr = fmt.Sprintf("%+v", v)
	}

	return dump
}
