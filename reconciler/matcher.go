package reconciler

import (
	"github.com/bentalba/taawidaty/reconciler/entities"
)

// MatchPair couples a catalogue record with the incoming record that
// scored at or above the acceptance threshold against it.
type MatchPair struct {
	Existing   *entities.Medication
	Incoming   entities.Incoming
	Confidence float64
}

// MatchResult partitions both inputs: every catalogue record lands in
// Pairs or UnmatchedExisting, every incoming record in Pairs or
// UnmatchedIncoming. The sets are disjoint.
type MatchResult struct {
	Pairs             []MatchPair
	UnmatchedExisting []*entities.Medication
	UnmatchedIncoming []entities.Incoming
}

// Match pairs catalogue records with incoming feed records. Both sides
// are partitioned by the leading character of their display name to
// bound comparison cost; within a partition each catalogue record scans
// the incoming records in their original order and takes the first one
// scoring >= threshold. Greedy first-acceptable assignment is a
// deliberate simplicity/cost tradeoff: it is deterministic for a given
// input ordering but not globally optimal, and a later catalogue record
// may lose an incoming record that would have scored higher for it.
//
// An incoming record is consumed by at most one catalogue record, and a
// price-less incoming record is never eligible to match.
func Match(existing []*entities.Medication, incoming []entities.Incoming, threshold float64) MatchResult {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	buckets := make(map[rune][]int)
	for i := range incoming {
		c := leadingChar(incoming[i].Name)
		buckets[c] = append(buckets[c], i)
	}
	consumed := make([]bool, len(incoming))

	var res MatchResult
	for _, med := range existing {
		matched := false
		for _, i := range buckets[leadingChar(med.Name)] {
			if consumed[i] || incoming[i].Price == nil {
				continue
			}
			if conf := Score(incoming[i].Name, med.Name); conf >= threshold {
				consumed[i] = true
				res.Pairs = append(res.Pairs, MatchPair{
					Existing:   med,
					Incoming:   incoming[i],
					Confidence: conf,
				})
				matched = true
				break
			}
		}
		if !matched {
			res.UnmatchedExisting = append(res.UnmatchedExisting, med)
		}
	}

	for i := range incoming {
		if !consumed[i] {
			res.UnmatchedIncoming = append(res.UnmatchedIncoming, incoming[i])
		}
	}
	return res
}

// leadingChar returns the uppercased first rune of a name.
func leadingChar(name string) rune {
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}
	return 0
}
