package recipe

import "regexp"

// synthesizedLabel matches placeholder labels emitted when the classifier has
// no human-readable name for a class id.
var synthesizedLabel = regexp.MustCompile(`^Class_\d+$`)

// IsSynthesizedLabel reports whether a label is a Class_<id> placeholder
// rather than a usable ingredient name.
func IsSynthesizedLabel(label string) bool {
	return synthesizedLabel.MatchString(label)
}

// MergeCandidates combines the classifier label and the OCR candidates into a
// single ingredient candidate list. A synthesized or empty label is excluded;
// OCR candidates keep their original order. No deduplication is performed.
func MergeCandidates(label string, ocrCandidates []string) []string {
	candidates := make([]string, 0, len(ocrCandidates)+1)
	if label != "" && !IsSynthesizedLabel(label) {
		candidates = append(candidates, label)
	}
	candidates = append(candidates, ocrCandidates...)
	return candidates
}
