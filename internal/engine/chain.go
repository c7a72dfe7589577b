package engine

// ChainKey identifies the in-progress segment so the backward walk does not
// match the record that mirrors the live form (re-editing a stored row).
type ChainKey struct {
	From    string
	To      string
	LengthM *float64
	AreaMM2 *float64
}

func optEq(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// UpstreamDrop walks the stored segment list backward from the given
// endpoint and sums the drop of every chained predecessor: the most recent
// record on the same circuit whose "to" endpoint equals the current "from"
// endpoint continues the chain at its own "from" endpoint. The walk stops
// at a branch point (no matching record, contributing 0) or when an
// endpoint repeats (cycle guard). The walk is iterative and bounded by the
// table size.
func UpstreamDrop(circuit, from string, self ChainKey, prior []PriorSegment) float64 {
	if circuit == "" || from == "" {
		return 0
	}

	total := 0.0
	visited := map[string]bool{}
	current := from

	for current != "" && !visited[current] {
		visited[current] = true

		var found *PriorSegment
		for i := len(prior) - 1; i >= 0; i-- {
			rec := &prior[i]
			if rec.Circuit != circuit || rec.To != current {
				continue
			}
			if rec.From == self.From && rec.To == self.To &&
				optEq(rec.LengthM, self.LengthM) && optEq(rec.AreaMM2, self.AreaMM2) {
				continue
			}
			found = rec
			break
		}
		if found == nil {
			break
		}
		total += found.DropPct
		current = found.From
	}
	return total
}
