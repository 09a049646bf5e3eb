package automod

// Source identifies which detector produced a verdict.
type Source string

const (
	SourceSpam     = Source("spam")
	SourceRaid     = Source("raid")
	SourceKeyword  = Source("keyword")
	SourceToxicity = Source("toxicity")
)

// Severity ranks how serious a violation is. Detectors assign severity; the
// engine uses it to pick a single verdict per event.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	}
	return "unknown"
}

// Verdict is a single detector's finding for one event.
type Verdict struct {
	Source      Source
	Category    string
	Severity    Severity
	Recommended ActionKind
	Evidence    map[string]interface{}
}

// content findings outrank raid findings outrank spam findings when severity
// ties; between the two content detectors the classifier's category wins
var sourcePriority = map[Source]int{
	SourceToxicity: 4,
	SourceKeyword:  3,
	SourceRaid:     2,
	SourceSpam:     1,
}

// within raid, pattern hits outrank join floods outrank account age
var raidCategoryPriority = map[string]int{
	"suspicious_pattern": 3,
	"mass_join":          2,
	"new_account":        1,
}

// PickVerdict selects the verdict the engine acts on when multiple detectors
// fire on one event: highest severity first, then source priority, then raid
// sub-category, then first encountered.
func PickVerdict(verdicts []Verdict) *Verdict {
	if len(verdicts) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(verdicts); i++ {
		if verdictOutranks(verdicts[i], verdicts[best]) {
			best = i
		}
	}
	return &verdicts[best]
}

func verdictOutranks(a, b Verdict) bool {
	if a.Severity != b.Severity {
		return a.Severity > b.Severity
	}
	if sourcePriority[a.Source] != sourcePriority[b.Source] {
		return sourcePriority[a.Source] > sourcePriority[b.Source]
	}
	if a.Source == SourceRaid && b.Source == SourceRaid {
		return raidCategoryPriority[a.Category] > raidCategoryPriority[b.Category]
	}
	return false
}
