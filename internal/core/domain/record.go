package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Field names used by the service-desk dataset.
const (
	FieldTicketCode      = "codigo_atendimento"
	FieldCustomer        = "cliente"
	FieldDescription     = "descricao"
	FieldAgent           = "atendente"
	FieldPriority        = "prioridade"
	FieldRating          = "nota"
	FieldRequestedAt     = "data_solicitacao"
	FieldStartHours      = "tempo_inicio_hrs"
	FieldResolutionHours = "tempo_resolucao_hrs"
)

// timeLayouts are tried in order when a field is read as a timestamp.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02",
}

// Record is one ticket row as loaded from the data source.
// Records are never mutated after loading.
type Record map[string]any

// Has reports whether the field is present and not null.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// Text returns the field coerced to a string. Missing or null fields yield "".
func (r Record) Text(field string) string {
	return TextOf(r[field])
}

// Number parses the field as a finite float.
func (r Record) Number(field string) (float64, bool) {
	return NumberOf(r[field])
}

// Time parses the field as a timestamp. Values without a zone are read as UTC.
func (r Record) Time(field string) (time.Time, bool) {
	switch v := r[field].(type) {
	case time.Time:
		return v, true
	case string:
		return ParseTimestamp(v)
	default:
		return time.Time{}, false
	}
}

// ParseTimestamp parses the timestamp formats found in ticket exports.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TextOf coerces a raw value to its canonical string form.
func TextOf(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case interface{ String() string }:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// NumberOf parses a raw value as a finite float. Numeric strings are accepted.
func NumberOf(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
