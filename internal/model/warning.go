package model

import "encoding/json"

// Warning is a non-fatal diagnostic attached to a resolved identity.
type Warning string

const (
	WarnParseError            Warning = "parse_error"
	WarnYearAmbiguous         Warning = "year_ambiguous"
	WarnYearNeedsConfirmation Warning = "year_needs_confirmation"
	WarnYearOutOfRange        Warning = "year_out_of_range"
	WarnIdentityConflict      Warning = "identity_conflict"
	WarnParallelInvalid       Warning = "parallel_invalid"
	WarnCatalogMismatch       Warning = "catalog_mismatch"
)

// Warnings is an insertion-ordered set of warnings.
type Warnings struct {
	items []Warning
	seen  map[Warning]struct{}
}

// Add inserts w unless it is already present.
func (ws *Warnings) Add(w Warning) {
	if ws.seen == nil {
		ws.seen = make(map[Warning]struct{})
	}
	if _, ok := ws.seen[w]; ok {
		return
	}
	ws.seen[w] = struct{}{}
	ws.items = append(ws.items, w)
}

// Has reports whether w was added.
func (ws *Warnings) Has(w Warning) bool {
	_, ok := ws.seen[w]
	return ok
}

// Len returns the number of distinct warnings.
func (ws *Warnings) Len() int {
	return len(ws.items)
}

// List returns a copy of the warnings in insertion order.
func (ws *Warnings) List() []Warning {
	out := make([]Warning, len(ws.items))
	copy(out, ws.items)
	return out
}

func (ws Warnings) MarshalJSON() ([]byte, error) {
	if ws.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(ws.items)
}

func (ws *Warnings) UnmarshalJSON(data []byte) error {
	var items []Warning
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*ws = Warnings{}
	for _, w := range items {
		ws.Add(w)
	}
	return nil
}
