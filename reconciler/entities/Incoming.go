package entities

// FeedKind discriminates the two incoming feed shapes. A price scrape
// carries only a name and a price; the official guide carries the full
// identity of the medication and is authoritative for it.
type FeedKind int

const (
	FeedScrape FeedKind = iota
	FeedGuide
)

func (k FeedKind) String() string {
	if k == FeedGuide {
		return "guide"
	}
	return "scrape"
}

// Incoming is the canonical shape a feed entry is converted to before
// matching. Price is nil when the source listing had no price; such
// entries are never eligible to match or to be promoted.
type Incoming struct {
	Kind   FeedKind
	Name   string
	Price  *float64
	Letter string      // source bucket tag, "" when the feed has none
	Guide  *GuideEntry // set only when Kind == FeedGuide
}

// ScrapeEntry is one row of the re-scraped price listing feed.
type ScrapeEntry struct {
	Name        string   `json:"name"`
	PublicPrice *float64 `json:"publicPrice"`
	Letter      string   `json:"letter"`
}

// ToIncoming converts a scrape row to the canonical incoming shape.
func (s ScrapeEntry) ToIncoming() Incoming {
	return Incoming{
		Kind:   FeedScrape,
		Name:   s.Name,
		Price:  s.PublicPrice,
		Letter: s.Letter,
	}
}

// GuideEntry is one row of the official reimbursement guide feed.
type GuideEntry struct {
	Barcode             *string `json:"barcode"`
	Name                string  `json:"name"`
	Dci                 string  `json:"dci"`
	Dosage              string  `json:"dosage"`
	Forme               string  `json:"forme"`
	Presentation        string  `json:"presentation"`
	Ppv                 float64 `json:"ppv"`
	PrixBr              float64 `json:"prix_br"`
	Ph                  float64 `json:"ph"`
	PrixBrPh            float64 `json:"prix_br_ph"`
	ClasseTherapeutique string  `json:"classe_therapeutique"`
	Type                string  `json:"type"`
}

// ToIncoming converts a guide row to the canonical incoming shape.
// A guide row without a usable public price stays price-less.
func (g GuideEntry) ToIncoming() Incoming {
	in := Incoming{
		Kind:  FeedGuide,
		Name:  g.Name,
		Guide: &g,
	}
	if g.Ppv > 0 {
		price := g.Ppv
		in.Price = &price
	}
	return in
}
