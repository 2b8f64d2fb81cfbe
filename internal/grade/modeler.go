package grade

import (
	"go.uber.org/zap"

	"github.com/sells-group/card-cli/internal/model"
)

// Estimate sources.
const (
	SourceModel      = "model"
	SourceImageStats = "image_stats"
)

// Modeler builds grade estimates.
type Modeler struct {
	PSA10Cap  float64
	JitterMax float64
}

// NewModeler returns a modeler with the default cap and jitter bound.
func NewModeler() Modeler {
	return Modeler{PSA10Cap: DefaultPSA10Cap, JitterMax: DefaultJitterMax}
}

// Input is what is known about a card's condition.
type Input struct {
	GradeRange string
	Confidence model.Confidence
	Evidence   *model.GradeEvidence
	Images     model.ImageStats
}

// Estimate converts a model grade range into bucket probabilities, falling
// back to image statistics when the range is missing or unparseable.
func (m Modeler) Estimate(in Input) model.GradeEstimate {
	conf := in.Confidence.OrDefault(model.ConfidenceMedium)
	dist, ok := DistributionFromRange(in.GradeRange, conf)
	label, source := in.GradeRange, SourceModel

	if !ok {
		if in.GradeRange != "" {
			zap.L().Warn("grade: unparseable grade range, using image stats",
				zap.String("grade_range", in.GradeRange),
			)
		}
		label, conf, dist = FromImageStats(in.Images, m.JitterMax)
		source = SourceImageStats
	}

	override := source == SourceModel && OverrideAllowed(conf, in.Evidence)
	return model.GradeEstimate{
		GradeRange:   label,
		Source:       source,
		Distribution: sortedGrades(dist),
		Probabilities: model.GradeProbabilities{
			PSA:        ToPSA(dist, m.PSA10Cap, override),
			BGS:        ToBGS(dist),
			Confidence: conf,
		},
		CapOverridden: override,
	}
}
