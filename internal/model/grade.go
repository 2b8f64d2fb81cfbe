package model

// GradeBucketProb is the probability assigned to one grade value.
type GradeBucketProb struct {
	Company string  `json:"company"`
	Grade   float64 `json:"grade"`
	P       float64 `json:"p"`
}

// GradeProbabilities are the canonical 4-bucket PSA and BGS distributions.
// Each map sums to 1.
type GradeProbabilities struct {
	PSA        map[string]float64 `json:"psa"`
	BGS        map[string]float64 `json:"bgs"`
	Confidence Confidence         `json:"confidence"`
}

// GradeEvidence is the condition evidence behind a model grade estimate.
type GradeEvidence struct {
	Centering string `json:"centering,omitempty"` // e.g. "50/50"
	Corners   string `json:"corners,omitempty"`
	Surface   string `json:"surface,omitempty"`
	Edges     string `json:"edges,omitempty"`
}

// ImageStats summarizes the submitted photos.
type ImageStats struct {
	Count    int   `json:"count"`
	AvgBytes int64 `json:"avg_bytes"`
	MinBytes int64 `json:"min_bytes"`
	MaxBytes int64 `json:"max_bytes"`
}

// GradeEstimate is the output of the grade modeler.
type GradeEstimate struct {
	GradeRange    string             `json:"grade_range"`
	Source        string             `json:"source"` // "model" or "image_stats"
	Distribution  []GradeBucketProb  `json:"distribution"`
	Probabilities GradeProbabilities `json:"grade_probabilities"`
	CapOverridden bool               `json:"psa10_cap_overridden"`
}
