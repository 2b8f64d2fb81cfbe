package model

// CardImage is one photo of a card. Side is "front", "back" or empty.
type CardImage struct {
	Path      string `json:"path,omitempty"`
	Side      string `json:"side,omitempty"`
	MediaType string `json:"mediaType"`
	Data      []byte `json:"-"`
}

// StatsOf summarizes image sizes for the grade fallback.
func StatsOf(images []CardImage) ImageStats {
	s := ImageStats{Count: len(images)}
	if len(images) == 0 {
		return s
	}
	var total int64
	for i, img := range images {
		n := int64(len(img.Data))
		total += n
		if i == 0 || n < s.MinBytes {
			s.MinBytes = n
		}
		if n > s.MaxBytes {
			s.MaxBytes = n
		}
	}
	s.AvgBytes = total / int64(len(images))
	return s
}
