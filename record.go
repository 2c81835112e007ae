package blocklog

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Record is the decoded form of one logging event as seen by a sink. It
// is immutable once built; each sink decodes its own copy from the event
// bytes and the formatter only ever reads it.
type Record struct {
	Time     string
	Level    string
	Name     string
	Message  string
	FuncName string

	Status      any
	User        any
	AuthInfo    any
	Details     any
	HasDetails  bool
	Request     any
	HasRequest  bool
	Response    any
	HasResponse bool
	Objects     []any

	Err *errorInfo

	// Fields holds the full decoded event, recognized keys included, so
	// callers can reach anything the formatter ignores.
	Fields map[string]any
}

func decodeRecord(p []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}

	rec := &Record{
		Time:     asString(fields[zerolog.TimestampFieldName]),
		Level:    asString(fields[zerolog.LevelFieldName]),
		Name:     asString(fields[loggerFieldName]),
		Message:  asString(fields[zerolog.MessageFieldName]),
		FuncName: asString(fields[zerolog.CallerFieldName]),
		Status:   fields[fieldStatus],
		User:     fields[fieldUser],
		AuthInfo: fields[fieldAuthInfo],
		Fields:   fields,
	}

	// Presence, not truthiness: an explicit "" or 0 still renders, only a
	// missing key or a JSON null counts as absent.
	rec.Details, rec.HasDetails = presentField(fields, fieldDetails)
	rec.Request, rec.HasRequest = presentField(fields, fieldRequest)
	rec.Response, rec.HasResponse = presentField(fields, fieldResponse)

	if objs, ok := fields[fieldObjects].([]any); ok {
		rec.Objects = objs
	}

	rec.Err = decodeErrorInfo(fields[zerolog.ErrorFieldName])

	return rec, nil
}

func presentField(fields map[string]any, key string) (any, bool) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func decodeErrorInfo(v any) *errorInfo {
	switch e := v.(type) {
	case nil:
		return nil
	case string:
		return &errorInfo{Message: e}
	case map[string]any:
		info := &errorInfo{
			Message: asString(e["message"]),
			History: asString(e["history"]),
			Root:    asString(e["root"]),
			RootOp:  asString(e["root_op"]),
		}
		info.Chain = asStrings(e["chain"])
		info.Ops = asStrings(e["ops"])
		return info
	default:
		return &errorInfo{Message: stringify(v)}
	}
}

// jsonTypeName names the decoded JSON kind of a plain attached value, for
// objects that did not come through DumpObjects and so lost their Go type.
func jsonTypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return emptyString
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return stringify(v)
	}
}

func asStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, asString(item))
	}
	return out
}
