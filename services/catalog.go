package services

import (
	"encoding/json"
	"fmt"
	"os"
)

// CriterionType identifies which activity counter a catalog entry is compared
// against.
type CriterionType string

const (
	CriterionPages  CriterionType = "pages"
	CriterionStreak CriterionType = "streak"
	CriterionSurahs CriterionType = "surahs"
	CriterionTime   CriterionType = "time"
)

// Time-criterion windows.
const (
	WindowEarly = "early"
	WindowNight = "night"
)

// CatalogEntry describes one unlockable milestone. Thresholds are compared
// with >= against the relevant counter.
type CatalogEntry struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Criterion   CriterionType `json:"criterion"`
	Threshold   int           `json:"threshold"`
	// Window narrows the time criterion to early-morning or late-night reads.
	Window string `json:"window,omitempty"`
}

// ActivitySnapshot carries the accumulated counters the evaluator compares
// against the catalog.
type ActivitySnapshot struct {
	PagesRead       int
	CurrentStreak   int
	SurahsCompleted int
	EarlyReads      int
	NightReads      int
}

// SatisfiedBy reports whether the snapshot crosses this entry's threshold.
// Pure function over the immutable entry; unknown criteria never qualify.
func (e CatalogEntry) SatisfiedBy(snap ActivitySnapshot) bool {
	switch e.Criterion {
	case CriterionPages:
		return snap.PagesRead >= e.Threshold
	case CriterionStreak:
		return snap.CurrentStreak >= e.Threshold
	case CriterionSurahs:
		return snap.SurahsCompleted >= e.Threshold
	case CriterionTime:
		if e.Window == WindowNight {
			return snap.NightReads >= e.Threshold
		}
		return snap.EarlyReads >= e.Threshold
	default:
		return false
	}
}

// Catalog is the immutable, ordered achievement rule list loaded at boot.
type Catalog struct {
	entries []CatalogEntry
	byID    map[string]CatalogEntry
}

// DefaultCatalog returns the built-in rule list.
func DefaultCatalog() *Catalog {
	return newCatalog([]CatalogEntry{
		{ID: "first_steps", Title: "First Steps", Description: "Read 10 pages", Criterion: CriterionPages, Threshold: 10},
		{ID: "dedicated_reader", Title: "Dedicated Reader", Description: "Read 100 pages", Criterion: CriterionPages, Threshold: 100},
		{ID: "avid_reader", Title: "Avid Reader", Description: "Read 500 pages", Criterion: CriterionPages, Threshold: 500},
		{ID: "week_warrior", Title: "Week Warrior", Description: "Keep a 7-day streak", Criterion: CriterionStreak, Threshold: 7},
		{ID: "month_of_light", Title: "Month of Light", Description: "Keep a 30-day streak", Criterion: CriterionStreak, Threshold: 30},
		{ID: "steadfast", Title: "Steadfast", Description: "Keep a 100-day streak", Criterion: CriterionStreak, Threshold: 100},
		{ID: "first_surah", Title: "First Surah", Description: "Complete a surah", Criterion: CriterionSurahs, Threshold: 1},
		{ID: "ten_surahs", Title: "Ten Surahs", Description: "Complete 10 surahs", Criterion: CriterionSurahs, Threshold: 10},
		{ID: "hafiz_road", Title: "Road of the Hafiz", Description: "Complete all 114 surahs", Criterion: CriterionSurahs, Threshold: 114},
		{ID: "early_bird", Title: "Early Bird", Description: "Read before Fajr 10 times", Criterion: CriterionTime, Threshold: 10, Window: WindowEarly},
		{ID: "night_owl", Title: "Night Owl", Description: "Read late at night 10 times", Criterion: CriterionTime, Threshold: 10, Window: WindowNight},
	})
}

// LoadCatalog reads a JSON rule list from path, falling back to the built-in
// catalog when path is empty. A present but invalid file is an error rather
// than a silent fallback.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var entries []CatalogEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("parse catalog: no entries in %s", path)
	}
	for i, e := range entries {
		if e.ID == "" || e.Threshold <= 0 {
			return nil, fmt.Errorf("parse catalog: entry %d missing id or threshold", i)
		}
	}

	return newCatalog(entries), nil
}

func newCatalog(entries []CatalogEntry) *Catalog {
	byID := make(map[string]CatalogEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	return &Catalog{entries: entries, byID: byID}
}

// Entries returns the ordered rule list as a copy.
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id string) (CatalogEntry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
