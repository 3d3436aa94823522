package domain

// Category is the topical bucket ("radar") an entry belongs to
type Category string

const (
	CategorySoftware       Category = "software-dev"
	CategoryAIInfra        Category = "ai-infra"
	CategoryMusicTech      Category = "music-tech"
	CategoryFounderMindset Category = "founder-mindset"
)

// Categories returns the known categories in display order
func Categories() []Category {
	return []Category{CategorySoftware, CategoryAIInfra, CategoryMusicTech, CategoryFounderMindset}
}

// Known reports whether c is one of the known categories
func (c Category) Known() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// Priority is the ordinal urgency tier of an entry
type Priority string

const (
	PriorityParadigmShift Priority = "paradigm-shift"
	PriorityHigh          Priority = "high"
	PriorityMentalModel   Priority = "mental-model"
	PriorityMedium        Priority = "medium"
	PriorityLow           Priority = "low"
)

// UnknownRank is the rank given to unrecognised tiers; it sorts after all known tiers.
const UnknownRank = 5

var priorityRank = map[Priority]int{
	PriorityParadigmShift: 0,
	PriorityHigh:          1,
	PriorityMentalModel:   2,
	PriorityMedium:        3,
	PriorityLow:           4,
}

// Priorities returns the known tiers in rank order
func Priorities() []Priority {
	return []Priority{PriorityParadigmShift, PriorityHigh, PriorityMentalModel, PriorityMedium, PriorityLow}
}

// Rank returns the fixed sort rank of the tier (lower is more urgent)
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return UnknownRank
}

// Known reports whether p is one of the known tiers
func (p Priority) Known() bool {
	_, ok := priorityRank[p]
	return ok
}

// Entry represents one curated feed item
type Entry struct {
	ID        string   `json:"id"`
	Category  Category `json:"radar"`
	Date      Day      `json:"date"`
	Cycle     string   `json:"cycle,omitempty"`
	Priority  Priority `json:"priority"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Tags      []string `json:"tags"`
	URL       string   `json:"url,omitempty"`
	Source    string   `json:"source,omitempty"`
	SourceURL string   `json:"sourceUrl,omitempty"`
	Price     string   `json:"price,omitempty"`
	VRAM      string   `json:"vram,omitempty"`
	License   string   `json:"license,omitempty"`
	Author    string   `json:"author,omitempty"`
}

// Match pairs an entry with its relevance score; lower scores are better matches
type Match struct {
	Entry Entry   `json:"entry"`
	Score float64 `json:"score"`
}

// Collection is a user-curated, named, ordered set of entry ids
type Collection struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	EntryIDs []string `json:"entryIds"`
}

// Has reports whether the collection references entryID
func (c Collection) Has(entryID string) bool {
	for _, id := range c.EntryIDs {
		if id == entryID {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share the id slice
func (c Collection) Clone() Collection {
	ids := make([]string, len(c.EntryIDs))
	copy(ids, c.EntryIDs)
	c.EntryIDs = ids
	return c
}
