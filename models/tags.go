package models

// CanonicalTags is the closed vocabulary of service tags produced by the
// ingestion pipeline. Filter parameters outside this list are ignored.
var CanonicalTags = []string{
	"backflow_testing",
	"rpz_testing",
	"dcva_testing",
	"pvb_testing",
	"preventer_installation",
	"preventer_repair",
	"cross_connection_control",
	"annual_certification_filing",
	"sprinkler_backflow",
	"commercial",
	"residential",
	"emergency_service",
	"free_estimates",
	"same_day_service",
}

// IsCanonicalTag reports whether tag belongs to the vocabulary.
func IsCanonicalTag(tag string) bool {
	for _, t := range CanonicalTags {
		if t == tag {
			return true
		}
	}

	return false
}
