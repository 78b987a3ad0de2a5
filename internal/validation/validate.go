package validation

// DefaultMaxMiscues is the number of extra hypothesis words tolerated by default
const DefaultMaxMiscues = 3

// Validate decides whether a hypothesis is an acceptable reading of a reference.
//
// Every reference word must occur somewhere in the hypothesis, in any position.
// The miscue count is the hypothesis length minus the reference length, and the
// reading passes when it is at most maxMiscues.
func Validate(hyp, ref []string, maxMiscues int) bool {
	present := make(map[string]struct{}, len(hyp))
	for _, word := range hyp {
		present[word] = struct{}{}
	}
	for _, word := range ref {
		if _, ok := present[word]; !ok {
			return false
		}
	}

	return len(hyp)-len(ref) <= maxMiscues
}
