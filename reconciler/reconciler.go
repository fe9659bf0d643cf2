package reconciler

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/bentalba/taawidaty/interfaces"
	"github.com/bentalba/taawidaty/reconciler/entities"
	"github.com/google/uuid"
)

// maxPriceSamples bounds the before/after price deltas kept in a report.
const maxPriceSamples = 25

// Compile-time check that Engine satisfies the Reconciler contract
var _ interfaces.Reconciler = (*Engine)(nil)

// Engine runs whole-collection reconciliation of an incoming feed
// against a catalogue. It holds no mutable state across runs: each call
// takes an immutable input collection and returns a new one, so
// concurrent runs on disjoint catalogues are safe by construction.
type Engine struct {
	Threshold float64
	Insurance string
	Logger    *slog.Logger
}

// NewEngine returns an engine with the given acceptance threshold
// (DefaultThreshold when zero) and insurance scheme tag.
func NewEngine(threshold float64, insurance string) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{Threshold: threshold, Insurance: insurance}
}

func (e *Engine) log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Reconcile merges a feed into the catalogue and returns the merged
// collection plus a change report. The input slices are not modified.
//
// The catalogue is partitioned by leading letter and matched greedily
// per partition (see Match). Matched records are merged in place,
// price-bearing unmatched feed records are promoted under fresh
// identifiers, and unmatched catalogue records are retained. The final
// collection is sorted by name and renumbered densely 1..N, which makes
// the operation idempotent: reconciling the output against the same
// feed changes nothing further.
func (e *Engine) Reconcile(catalogue []entities.Medication, feed []entities.Incoming) ([]entities.Medication, *entities.ChangeReport) {
	start := time.Now()
	report := &entities.ChangeReport{
		RunID:     uuid.NewString(),
		Insurance: e.Insurance,
		FeedKind:  feedKind(feed).String(),
		Threshold: e.Threshold,
	}
	guideRun := feedKind(feed) == entities.FeedGuide

	// Work on copies so the caller's collection stays untouched. A
	// record without a name cannot be matched or served; it is dropped
	// with a warning rather than failing the batch.
	working := make([]*entities.Medication, 0, len(catalogue))
	nextID := 1
	for i := range catalogue {
		if catalogue[i].Name == "" {
			e.log().Warn("Skipping malformed catalogue record", "id", catalogue[i].Id)
			report.SkippedInvalid++
			continue
		}
		med := catalogue[i]
		med.NameNormalized = Normalize(med.Name)
		working = append(working, &med)
		if med.Id >= nextID {
			nextID = med.Id + 1
		}
	}
	sort.Slice(working, func(i, j int) bool {
		if working[i].Name != working[j].Name {
			return working[i].Name < working[j].Name
		}
		return working[i].Id < working[j].Id
	})

	medsByLetter := make(map[rune][]*entities.Medication)
	for _, med := range working {
		c := leadingChar(med.Name)
		medsByLetter[c] = append(medsByLetter[c], med)
	}
	feedByLetter := make(map[rune][]entities.Incoming)
	for _, in := range feed {
		c := leadingChar(in.Letter)
		if c == 0 {
			c = leadingChar(in.Name)
		}
		feedByLetter[c] = append(feedByLetter[c], in)
	}

	merged := make([]*entities.Medication, 0, len(working))
	for _, letter := range sortedLetters(medsByLetter, feedByLetter) {
		meds := medsByLetter[letter]
		entries := feedByLetter[letter]
		stats := entities.LetterStats{
			Letter:        string(letter),
			CatalogueSize: len(meds),
			FeedSize:      len(entries),
		}

		res := Match(meds, entries, e.Threshold)

		for _, pair := range res.Pairs {
			oldPrice := pair.Existing.Ppv
			Merge(pair.Existing, pair.Incoming)
			stats.Matched++
			if math.Abs(pair.Existing.Ppv-oldPrice) > 0.01 {
				stats.PriceUpdated++
				if len(report.PriceChanges) < maxPriceSamples {
					report.PriceChanges = append(report.PriceChanges, entities.PriceChange{
						Name: pair.Existing.Name,
						Old:  oldPrice,
						New:  pair.Existing.Ppv,
					})
				}
			}
			merged = append(merged, pair.Existing)
		}

		for _, med := range res.UnmatchedExisting {
			// The guide is the only source of barcodes: a record the
			// guide does not corroborate keeps its place but loses any
			// stale barcode.
			if guideRun {
				med.Barcode = nil
			}
			report.KeptUnmatched++
			merged = append(merged, med)
		}

		for _, in := range res.UnmatchedIncoming {
			if in.Price == nil {
				continue
			}
			promoted := Promote(in, nextID, e.Insurance)
			nextID++
			stats.NewAdded++
			merged = append(merged, &promoted)
		}

		report.Matched += stats.Matched
		report.PriceUpdated += stats.PriceUpdated
		report.NewAdded += stats.NewAdded
		if stats.CatalogueSize > 0 || stats.FeedSize > 0 {
			report.Letters = append(report.Letters, stats)
		}
	}

	// Dense identifiers in final name order: stable across re-runs.
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Name != merged[j].Name {
			return merged[i].Name < merged[j].Name
		}
		return merged[i].Id < merged[j].Id
	})
	out := make([]entities.Medication, len(merged))
	for i, med := range merged {
		med.Id = i + 1
		out[i] = *med
	}

	report.Duration = time.Since(start).String()
	e.log().Info("Reconciliation completed",
		"run_id", report.RunID,
		"insurance", report.Insurance,
		"feed_kind", report.FeedKind,
		"matched", report.Matched,
		"price_updated", report.PriceUpdated,
		"new_added", report.NewAdded,
		"kept_unmatched", report.KeptUnmatched,
		"duration", report.Duration,
	)
	return out, report
}

// RefreshRates reapplies the rate classifier to every record and
// rederives the financial fields. Used when rebuilding taux_remb from
// scratch instead of trusting the stored rates.
func (e *Engine) RefreshRates(catalogue []entities.Medication) ([]entities.Medication, entities.RateStats) {
	stats := entities.RateStats{Total: len(catalogue)}
	out := make([]entities.Medication, len(catalogue))
	for i := range catalogue {
		med := catalogue[i]
		oldTaux := med.TauxRemb
		oldReimb, oldPatient := med.ReimbursementAmount, med.PatientPays

		med.TauxRemb = ClassifyRate(&med)
		switch {
		case med.TauxRemb == oldTaux && med.TauxRemb == StandardRate:
			stats.Already70++
		case med.TauxRemb == oldTaux:
			stats.Kept0++
		case med.TauxRemb == StandardRate:
			stats.ChangedTo70++
		default:
			stats.ChangedTo0++
		}

		Recalculate(&med)
		if med.ReimbursementAmount != oldReimb || med.PatientPays != oldPatient {
			stats.Recalculated++
		}
		out[i] = med
	}
	return out, stats
}

// feedKind treats a run as a guide run when any entry came from the
// guide feed; mixed feeds are not produced by the loaders.
func feedKind(feed []entities.Incoming) entities.FeedKind {
	for i := range feed {
		if feed[i].Kind == entities.FeedGuide {
			return entities.FeedGuide
		}
	}
	return entities.FeedScrape
}

func sortedLetters(meds map[rune][]*entities.Medication, feed map[rune][]entities.Incoming) []rune {
	seen := make(map[rune]bool, len(meds)+len(feed))
	letters := make([]rune, 0, len(meds)+len(feed))
	for c := range meds {
		if !seen[c] {
			seen[c] = true
			letters = append(letters, c)
		}
	}
	for c := range feed {
		if !seen[c] {
			seen[c] = true
			letters = append(letters, c)
		}
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return letters
}
