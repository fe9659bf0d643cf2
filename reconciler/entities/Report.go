package entities

// PriceChange is one before/after price delta kept as a report sample.
type PriceChange struct {
	Name string  `json:"name"`
	Old  float64 `json:"old"`
	New  float64 `json:"new"`
}

// LetterStats is the per-partition breakdown of a reconciliation run.
type LetterStats struct {
	Letter        string `json:"letter"`
	CatalogueSize int    `json:"catalogue_size"`
	FeedSize      int    `json:"feed_size"`
	Matched       int    `json:"matched"`
	PriceUpdated  int    `json:"price_updated"`
	NewAdded      int    `json:"new_added"`
}

// ChangeReport summarizes a reconciliation run. It is meant for a human
// reviewer: the merged output only replaces the live catalogue after the
// report has been read, never automatically.
type ChangeReport struct {
	RunID          string        `json:"run_id"`
	Insurance      string        `json:"insurance"`
	FeedKind       string        `json:"feed_kind"`
	Threshold      float64       `json:"threshold"`
	Matched        int           `json:"matched"`
	PriceUpdated   int           `json:"price_updated"`
	NewAdded       int           `json:"new_added"`
	KeptUnmatched  int           `json:"kept_unmatched"`
	SkippedInvalid int           `json:"skipped_invalid"`
	PriceChanges   []PriceChange `json:"price_changes"`
	Letters        []LetterStats `json:"letters,omitempty"`
	Duration       string        `json:"duration"`
}

// HasChanges reports whether the run altered the catalogue at all.
func (r *ChangeReport) HasChanges() bool {
	return r.PriceUpdated > 0 || r.NewAdded > 0 || r.SkippedInvalid > 0
}

// RateStats summarizes a reimbursement-rate refresh pass.
type RateStats struct {
	Total        int `json:"total"`
	Already70    int `json:"already_70"`
	ChangedTo70  int `json:"changed_to_70"`
	ChangedTo0   int `json:"changed_to_0"`
	Kept0        int `json:"kept_0"`
	Recalculated int `json:"recalculated"`
}
