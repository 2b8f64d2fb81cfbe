package model

// OcrLine is one extracted text line.
type OcrLine struct {
	Text       string `json:"text"`
	ImageIndex *int   `json:"imageIndex,omitempty"`
	Side       string `json:"side,omitempty"`
}

// IsBack reports whether the line was read from the back of the card.
func (l OcrLine) IsBack() bool {
	return l.Side == "back"
}

// YearCandidate is a year found in OCR text with its evidence score.
type YearCandidate struct {
	Year       int    `json:"year"`
	Score      int    `json:"score"`
	SourceLine string `json:"sourceLine"`
}

// OcrSignals is the normalized output of the text-extraction pass.
type OcrSignals struct {
	Lines            []OcrLine       `json:"lines"`
	RawText          string          `json:"rawText"`
	YearCandidates   []YearCandidate `json:"yearCandidates"`
	Brand            *string         `json:"brand,omitempty"`
	BrandConfidence  Confidence      `json:"brandConfidence"`
	SetName          *string         `json:"setName,omitempty"`
	SetConfidence    Confidence      `json:"setConfidence"`
	Parallel         *string         `json:"parallel,omitempty"`
	CardNumber       *string         `json:"cardNumber,omitempty"`
	Rookie           *bool           `json:"rookie,omitempty"`
	Player           *string         `json:"player,omitempty"`
	PlayerConfidence Confidence      `json:"playerConfidence"`
	NameCandidates   []string        `json:"nameCandidates,omitempty"`
}

// VisionSignals is the defensively decoded vision-guess payload.
// Every field is optional.
type VisionSignals struct {
	Player          *string               `json:"player,omitempty"`
	Players         []string              `json:"players,omitempty"`
	Brand           *string               `json:"brand,omitempty"`
	SetName         *string               `json:"setName,omitempty"`
	Subset          *string               `json:"subset,omitempty"`
	Sport           *string               `json:"sport,omitempty"`
	League          *string               `json:"league,omitempty"`
	Year            *int                  `json:"year,omitempty"`
	CardNumber      *string               `json:"cardNumber,omitempty"`
	Rookie          *bool                 `json:"rookie,omitempty"`
	Parallel        *string               `json:"parallel,omitempty"`
	Insert          *string               `json:"insert,omitempty"`
	Grade           *string               `json:"grade,omitempty"`
	Confidence      Confidence            `json:"confidence"`
	FieldConfidence map[string]Confidence `json:"fieldConfidence,omitempty"`
	Warnings        []string              `json:"warnings,omitempty"`
}

// FieldTier returns the per-field confidence if present, else the overall
// confidence, else low.
func (v *VisionSignals) FieldTier(field string) Confidence {
	if v == nil {
		return ConfidenceUnknown
	}
	if c, ok := v.FieldConfidence[field]; ok && c != ConfidenceUnknown {
		return c
	}
	return v.Confidence.OrDefault(ConfidenceLow)
}

// PrimaryPlayer returns Player, falling back to the first entry of Players.
func (v *VisionSignals) PrimaryPlayer() *string {
	if v == nil {
		return nil
	}
	if v.Player != nil {
		return v.Player
	}
	for _, p := range v.Players {
		if p != "" {
			return &p
		}
	}
	return nil
}

// ParseFailure reports that a vision payload could not be decoded.
type ParseFailure struct {
	Reason string `json:"reason"`
}

func (p *ParseFailure) Error() string {
	return "vision payload parse failure: " + p.Reason
}

// VisionOutcome is either decoded signals or a parse failure, never both.
type VisionOutcome struct {
	Signals *VisionSignals
	Failure *ParseFailure
}

// VisionOK wraps decoded signals.
func VisionOK(s *VisionSignals) VisionOutcome {
	if s == nil {
		s = &VisionSignals{}
	}
	return VisionOutcome{Signals: s}
}

// VisionFailed wraps a parse failure.
func VisionFailed(reason string) VisionOutcome {
	return VisionOutcome{Failure: &ParseFailure{Reason: reason}}
}

// Failed reports whether the outcome is a parse failure.
func (o VisionOutcome) Failed() bool {
	return o.Failure != nil
}
