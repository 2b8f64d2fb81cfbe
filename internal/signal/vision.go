package signal

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/card-cli/internal/model"
)

// absentValues are strings a model uses to mean "no value".
var absentValues = map[string]struct{}{
	"": {}, "unknown": {}, "n/a": {}, "na": {}, "none": {}, "null": {}, "nil": {}, "-": {}, "?": {},
}

// fieldAliases maps accepted payload keys to canonical field names.
var fieldAliases = map[string]string{
	"player":      model.FieldPlayer,
	"player_name": model.FieldPlayer,
	"brand":       model.FieldBrand,
	"setname":     model.FieldSetName,
	"set_name":    model.FieldSetName,
	"set":         model.FieldSetName,
	"subset":      model.FieldSubset,
	"sport":       model.FieldSport,
	"league":      model.FieldLeague,
	"year":        model.FieldYear,
	"cardnumber":  model.FieldCardNumber,
	"card_number": model.FieldCardNumber,
	"number":      model.FieldCardNumber,
	"rookie":      model.FieldRookie,
	"is_rookie":   model.FieldRookie,
	"parallel":    model.FieldParallel,
}

// DecodeVision strictly decodes a raw vision payload. Markdown code fences
// are stripped; anything that is not a single JSON object yields a
// ParseFailure. Individual fields of the wrong shape are dropped, never
// fatal.
func DecodeVision(raw []byte) model.VisionOutcome {
	body := stripFences(raw)
	if len(body) == 0 {
		return model.VisionFailed("empty payload")
	}
	if body[0] != '{' {
		return model.VisionFailed("payload is not a JSON object")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return model.VisionFailed("invalid json: " + err.Error())
	}
	if dec.More() {
		return model.VisionFailed("trailing data after JSON object")
	}
	if obj == nil {
		return model.VisionFailed("payload is null")
	}

	v := &model.VisionSignals{}
	for key, val := range obj {
		switch canonicalKey(key) {
		case model.FieldPlayer:
			v.Player = coerceString(val)
		case model.FieldBrand:
			v.Brand = coerceString(val)
		case model.FieldSetName:
			v.SetName = coerceString(val)
		case model.FieldSubset:
			v.Subset = coerceString(val)
		case model.FieldSport:
			v.Sport = coerceString(val)
		case model.FieldLeague:
			v.League = coerceString(val)
		case model.FieldYear:
			v.Year = coerceYear(val)
		case model.FieldCardNumber:
			v.CardNumber = coerceString(val)
		case model.FieldRookie:
			v.Rookie = coerceBool(val)
		case model.FieldParallel:
			v.Parallel = coerceString(val)
		case "players":
			v.Players = coerceStrings(val)
		case "insert":
			v.Insert = coerceString(val)
		case "grade":
			v.Grade = coerceString(val)
		case "confidence":
			v.Confidence = coerceConfidence(val)
		case "fieldconfidence", "field_confidence":
			v.FieldConfidence = coerceFieldConfidence(val)
		case "warnings":
			v.Warnings = coerceStrings(val)
		}
	}
	return model.VisionOK(v)
}

func canonicalKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if f, ok := fieldAliases[k]; ok {
		return f
	}
	return k
}

func stripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return []byte(strings.TrimSpace(s))
}

func coerceString(val any) *string {
	var s string
	switch x := val.(type) {
	case string:
		s = strings.TrimSpace(x)
	case json.Number:
		s = x.String()
	default:
		return nil
	}
	if _, absent := absentValues[strings.ToLower(s)]; absent {
		return nil
	}
	return &s
}

func coerceStrings(val any) []string {
	arr, ok := val.([]any)
	if !ok {
		if s := coerceString(val); s != nil {
			return []string{*s}
		}
		return nil
	}
	var out []string
	for _, item := range arr {
		if s := coerceString(item); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func coerceYear(val any) *int {
	var n int
	switch x := val.(type) {
	case json.Number:
		f, err := x.Float64()
		if err != nil || f != math.Trunc(f) {
			return nil
		}
		n = int(f)
	case string:
		s := strings.TrimSpace(x)
		// Season form "2023-24" resolves to the first year.
		if len(s) >= 4 {
			if y, err := strconv.Atoi(s[:4]); err == nil && (len(s) == 4 || s[4] == '-' || s[4] == '/') {
				n = y
				break
			}
		}
		return nil
	default:
		return nil
	}
	return &n
}

func coerceBool(val any) *bool {
	var b bool
	switch x := val.(type) {
	case bool:
		b = x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes", "y", "rc", "rookie":
			b = true
		case "false", "no", "n":
			b = false
		default:
			return nil
		}
	case json.Number:
		switch x.String() {
		case "1":
			b = true
		case "0":
			b = false
		default:
			return nil
		}
	default:
		return nil
	}
	return &b
}

func coerceConfidence(val any) model.Confidence {
	switch x := val.(type) {
	case string:
		c, _ := model.ParseConfidence(x)
		return c
	case json.Number:
		f, err := x.Float64()
		if err != nil || math.IsNaN(f) {
			return model.ConfidenceUnknown
		}
		// Percentages are accepted as well as fractions.
		if f > 1 && f <= 100 {
			f /= 100
		}
		if f < 0 || f > 1 {
			return model.ConfidenceUnknown
		}
		return model.ConfidenceFromScore(f)
	default:
		return model.ConfidenceUnknown
	}
}

func coerceFieldConfidence(val any) map[string]model.Confidence {
	obj, ok := val.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]model.Confidence, len(obj))
	for k, v := range obj {
		if c := coerceConfidence(v); c != model.ConfidenceUnknown {
			out[canonicalKey(k)] = c
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

