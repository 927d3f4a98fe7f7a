package insights

// MaxEntries bounds each persisted insight list.
const MaxEntries = 500

// Lists carries the three insight label sets for one scope.
type Lists struct {
	WeakPoints   []string
	StrongPoints []string
	StudyPlan    []string
}

// Merge unions incoming entries into existing ones per field: existing
// entries keep their order, unseen incoming entries append after them,
// duplicates are dropped, and each list is capped at MaxEntries. The
// function is pure and idempotent: merging the same incoming lists
// twice changes nothing on the second call.
func Merge(existing, incoming Lists) Lists {
	return Lists{
		WeakPoints:   MergeUnique(existing.WeakPoints, incoming.WeakPoints, MaxEntries),
		StrongPoints: MergeUnique(existing.StrongPoints, incoming.StrongPoints, MaxEntries),
		StudyPlan:    MergeUnique(existing.StudyPlan, incoming.StudyPlan, MaxEntries),
	}
}

// MergeUnique returns the deduplicated union of existing and incoming
// truncated to max, preserving the relative order of existing entries
// followed by new incoming ones.
func MergeUnique(existing, incoming []string, max int) []string {
	seen := make(map[string]bool, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, lists := range [][]string{existing, incoming} {
		for _, s := range lists {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
			if len(out) == max {
				return out
			}
		}
	}
	return out
}
