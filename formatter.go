package blocklog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	smerrors "github.com/Station-Manager/errors"
	json "github.com/goccy/go-json"
)

// Formatter renders a decoded Record as an ordered sequence of labeled
// text blocks. It holds no mutable state beyond its identifier and time
// format and is safe for concurrent use by multiple sinks.
type Formatter struct {
	identifier string

	// TimeFormat is the layout used for the header timestamp.
	TimeFormat string
}

// NewFormatter returns a Formatter bound to the given identifier. An
// empty identifier is a contract violation, not a recoverable default.
func NewFormatter(identifier string) (*Formatter, error) {
	const op smerrors.Op = "blocklog.NewFormatter"
	if identifier == emptyString {
		return nil, smerrors.New(op).Msg(errMsgEmptyIdentifier)
	}
	return &Formatter{identifier: identifier, TimeFormat: defaultTimeFormat}, nil
}

// Identifier returns the identifier injected into every header.
func (f *Formatter) Identifier() string {
	return f.identifier
}

// Format assembles all blocks into the final multi-line report. It never
// panics; a field that cannot be rendered degrades to a placeholder and
// the remaining blocks still appear.
func (f *Formatter) Format(rec *Record) string {
	lines := f.headerBlock(rec)
	lines = append(lines, f.messageBlock(rec)...)
	lines = append(lines, f.requestBlock(rec)...)
	lines = append(lines, f.responseBlock(rec)...)
	lines = append(lines, f.userBlock(rec)...)
	lines = append(lines, f.detailsBlock(rec)...)
	lines = append(lines, f.objectsBlock(rec)...)
	lines = append(lines, f.exceptionBlock(rec)...)
	return strings.Join(lines, "\n")
}

// headerBlock is the only block that is always present:
// [timestamp][LEVEL][identifier][logger-name], with [status] appended
// when the status field is present and truthy.
func (f *Formatter) headerBlock(rec *Record) []string {
	header := "[" + f.formatTime(rec.Time) + "][" + strings.ToUpper(rec.Level) + "][" + f.identifier + "][" + rec.Name + "]"
	if truthy(rec.Status) {
		header += "[" + stringify(rec.Status) + "]"
	}
	return []string{header}
}

func (f *Formatter) messageBlock(rec *Record) []string {
	if rec.Message == emptyString {
		return nil
	}
	lines := []string{"Message:"}
	for _, ln := range strings.Split(rec.Message, "\n") {
		lines = append(lines, "\t"+ln)
	}
	return append(lines, emptyString)
}

func (f *Formatter) requestBlock(rec *Record) []string {
	if !rec.HasRequest {
		return nil
	}
	return httpBlock("Request:", rec.Request)
}

func (f *Formatter) responseBlock(rec *Record) []string {
	if !rec.HasResponse {
		return nil
	}
	return httpBlock("Response:", rec.Response)
}

func httpBlock(label string, v any) []string {
	lines := []string{label}
	if detail := httpLines(v); detail != nil {
		lines = append(lines, detail...)
	} else {
		lines = append(lines, "\t"+stringify(v))
	}
	return append(lines, emptyString)
}

// httpLines inspects a request/response-like value and emits detail
// lines in a fixed order. A value qualifies when it exposes at least one
// of the recognized attributes; URL is the one field always printed.
// Returns nil for values with no recognized attributes.
func httpLines(v any) []string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	recognized := false
	for _, key := range []string{"status_code", "method", "url", "headers", "body", "text"} {
		if _, ok := m[key]; ok {
			recognized = true
			break
		}
	}
	if !recognized {
		return nil
	}

	var lines []string
	if sc, ok := m["status_code"]; ok {
		lines = append(lines, "\tStatus: "+stringify(sc))
	}
	if method, ok := m["method"]; ok {
		lines = append(lines, "\tMethod: "+stringify(method))
	}
	if u, ok := m["url"]; ok && u != nil {
		lines = append(lines, "\tURL: "+stringify(u))
	} else {
		lines = append(lines, "\tURL: "+noneMarker)
	}
	if h, ok := m["headers"]; ok {
		lines = append(lines, "\tHeaders: "+stringify(h))
	}
	// At most one body line; body takes precedence over text.
	if b, ok := m["body"]; ok && stringify(b) != emptyString {
		lines = append(lines, "\tBody: "+stringify(b))
	} else if t, ok := m["text"]; ok && stringify(t) != emptyString {
		lines = append(lines, "\tBody: "+stringify(t))
	}
	return lines
}

func (f *Formatter) userBlock(rec *Record) []string {
	if !truthy(rec.User) {
		return nil
	}
	lines := []string{"User:", "\t" + stringify(rec.User)}
	if truthy(rec.AuthInfo) {
		lines = append(lines, emptyString, "\tAuth Info:", "\t\t"+stringify(rec.AuthInfo))
	}
	return append(lines, emptyString)
}

func (f *Formatter) detailsBlock(rec *Record) []string {
	if !rec.HasDetails {
		return nil
	}
	return []string{"Details:", "\t" + stringify(rec.Details), emptyString}
}

func (f *Formatter) objectsBlock(rec *Record) []string {
	if len(rec.Objects) == 0 {
		return nil
	}
	lines := []string{"Objects:"}
	for idx, obj := range rec.Objects {
		typeName, fieldLines := objectLines(obj)
		lines = append(lines, "\tObject "+strconv.Itoa(idx+1)+" - "+typeName+":")
		lines = append(lines, fieldLines...)
	}
	return append(lines, emptyString)
}

// objectLines renders one attached object. Values produced by
// DumpObjects carry their original type name and ordered fields; plain
// maps render as sorted key/value lines; everything else falls back to a
// verbatim representation.
func objectLines(obj any) (typeName string, lines []string) {
	m, ok := obj.(map[string]any)
	if !ok {
		return jsonTypeName(obj), []string{"\t\t" + stringify(obj)}
	}

	// The serialized-dump envelope needs a type name plus fields or a
	// representation; a plain map merely carrying a "type" key is not one.
	if t, ok := m["type"].(string); ok && t != emptyString {
		if fields, ok := m["fields"].([]any); ok {
			for _, fv := range fields {
				fm, ok := fv.(map[string]any)
				if !ok {
					lines = append(lines, "\t\t"+stringify(fv))
					continue
				}
				lines = append(lines, "\t\t"+asString(fm["key"])+": "+asString(fm["value"]))
			}
			return t, lines
		}
		if repr, ok := m["repr"].(string); ok {
			return t, []string{"\t\t" + repr}
		}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, "\t\t"+k+": "+stringify(m[k]))
	}
	return jsonTypeName(obj), lines
}

func (f *Formatter) exceptionBlock(rec *Record) []string {
	if rec.Err == nil {
		return nil
	}
	funcName := rec.FuncName
	if funcName == emptyString {
		funcName = noneMarker
	}
	lines := []string{"Function Name:", "\t" + funcName, emptyString, "Exception Details:"}
	if len(rec.Err.Chain) > 0 {
		for i, msg := range rec.Err.Chain {
			if i < len(rec.Err.Ops) && rec.Err.Ops[i] != emptyString {
				lines = append(lines, "\t["+rec.Err.Ops[i]+"] "+msg)
			} else {
				lines = append(lines, "\t"+msg)
			}
		}
	} else {
		lines = append(lines, "\t"+rec.Err.Message)
	}
	return lines
}

// formatTime accepts either the RFC3339 form the package configures
// zerolog to emit or a raw unix-seconds number, and falls back to the
// literal value when neither parses.
func (f *Formatter) formatTime(ts string) string {
	if ts == emptyString {
		return emptyString
	}
	layout := f.TimeFormat
	if layout == emptyString {
		layout = defaultTimeFormat
	}
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t.Format(layout)
	}
	if secs, err := strconv.ParseInt(ts, 10, 64); err == nil {
		return time.Unix(secs, 0).Format(layout)
	}
	return ts
}

// stringify renders any value for inclusion in a block. A panicking
// String/Error implementation degrades to a placeholder instead of
// escaping the formatter; the methods are invoked directly because fmt
// would otherwise swallow the panic into a %!v(PANIC=...) verb.
func stringify(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = unrepresentable
		}
	}()
	switch t := v.(type) {
	case nil:
		return noneMarker
	case string:
		return t
	case error:
		return t.Error()
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprintf("%v", v)
}

// truthy mirrors presence-and-non-zero semantics for header status and
// user fields: empty strings, zero numbers, false and empty collections
// do not count.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != emptyString
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

