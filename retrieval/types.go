// Package retrieval ranks knowledge base documents against a free-text query
// by counting query term occurrences, and cuts a snippet around the earliest
// matched term of every ranked document.
//
// Matching is case-insensitive substring matching with no word boundaries, so
// a short token also counts inside longer words ("go" matches "good"). Short
// abbreviation queries rely on this.
package retrieval

// Stage names a pipeline milestone recorded in a Result trace.
type Stage string

const (
	StageValidatingQuery  Stage = "VALIDATING_QUERY"
	StageLoadingKB        Stage = "LOADING_KB"
	StageScoringDocuments Stage = "SCORING_DOCUMENTS"
	StageBuildingSnippets Stage = "BUILDING_SNIPPETS"
	StageGeneratingAnswer Stage = "GENERATING_ANSWER"
	StageDone             Stage = "DONE"
)

const (
	DefaultMaxResults     = 5
	DefaultMinQueryLength = 3
	DefaultSnippetRadius  = 180
)

// Ellipsis marks a snippet side that was cut from the document.
const Ellipsis = "…"

// Options tunes ranking and snippet extraction. Zero values select defaults.
type Options struct {
	MaxResults     int
	MinQueryLength int
	SnippetRadius  int
}

func (o Options) withDefaults() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.MinQueryLength <= 0 {
		o.MinQueryLength = DefaultMinQueryLength
	}
	if o.SnippetRadius <= 0 {
		o.SnippetRadius = DefaultSnippetRadius
	}
	return o
}

// Match is a ranked document with its excerpt.
type Match struct {
	DocID        string `json:"docId"`
	Title        string `json:"title"`
	RelativePath string `json:"relativePath"`
	Score        int    `json:"score"`
	Snippet      string `json:"snippet"`
}

// Result is the outcome of one retrieval run. Steps is an append-only trace
// kept for display; nothing branches on it.
type Result struct {
	Steps   []Stage `json:"steps"`
	Query   string  `json:"query"`
	Results []Match `json:"results"`
}
