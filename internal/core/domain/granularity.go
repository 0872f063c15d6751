package domain

// Granularity bounds.
const (
	GranularityMin = 0
	GranularityMax = 100
)

// ClampGranularity folds any integer into the valid [0,100] range.
func ClampGranularity(g int) int {
	if g < GranularityMin {
		return GranularityMin
	}
	if g > GranularityMax {
		return GranularityMax
	}
	return g
}

// baseTopicCount and topicCountRange bound the hinted topic ceiling:
// granularity 0 hints at most baseTopicCount topics, granularity 100 at most
// baseTopicCount+topicCountRange.
const (
	baseTopicCount  = 2
	topicCountRange = 18
)

// MapGranularity maps a granularity value to a segmentation hint.
// The function is pure and total: out-of-range input is clamped, never
// rejected. The topic-count ceiling is monotonic in granularity, which keeps
// re-segmentation behaviour predictable when the user moves the slider.
func MapGranularity(granularity int) SegmentationHint {
	g := ClampGranularity(granularity)

	maxTopics := baseTopicCount + g*topicCountRange/GranularityMax
	minTopics := maxTopics / 3
	if minTopics < 1 {
		minTopics = 1
	}

	return SegmentationHint{
		MinTopics: minTopics,
		MaxTopics: maxTopics,
		Guidance:  granularityGuidance(g),
	}
}

// granularityGuidance returns the prompt wording for a granularity band.
func granularityGuidance(g int) string {
	switch {
	case g < 20:
		return "Extract only the broadest, most general macro-topics (very few top-level topics)."
	case g < 40:
		return "Extract general macro-topics (a small number of broad topics)."
	case g < 60:
		return "Extract a balanced mix of general topics and some specific sub-topics."
	case g < 80:
		return "Extract more specific sub-topics with moderate detail."
	default:
		return "Extract highly specific, detailed micro-topics (many fine-grained topics)."
	}
}
