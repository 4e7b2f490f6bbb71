package evaluation

// RecallAtK computes Recall@K: the fraction of relevant salons found in the
// top-K retrieved results. Duplicates in retrieved count once. Returns 0.0
// if relevant is empty.
func RecallAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}

	want := toSet(relevant)
	found := make(map[string]struct{}, len(want))
	for _, id := range topK(retrieved, k) {
		if _, ok := want[id]; ok {
			found[id] = struct{}{}
		}
	}

	return float64(len(found)) / float64(len(want))
}

// MRRAtK computes the reciprocal rank of the first relevant salon in the
// top-K retrieved results, or 0.0 if there is none.
func MRRAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 || len(retrieved) == 0 {
		return 0.0
	}

	want := toSet(relevant)
	for i, id := range topK(retrieved, k) {
		if _, ok := want[id]; ok {
			return 1.0 / float64(i+1)
		}
	}

	return 0.0
}

func topK(retrieved []string, k int) []string {
	if k >= 0 && k < len(retrieved) {
		return retrieved[:k]
	}
	return retrieved
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
