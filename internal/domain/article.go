package domain

import "time"

// Source identifies which adapter produced a candidate or persisted article.
type Source string

const (
	SourceRSS     Source = "RSS"
	SourceNewsAPI Source = "NEWS_API"
	SourceManual  Source = "MANUAL"
	SourceURL     Source = "URL"
)

// Status enumerates curation states for a persisted article.
type Status string

const (
	StatusQueued      Status = "QUEUED"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusNeedsManual Status = "NEEDS_MANUAL"
)

// Candidate is an adapter-produced article awaiting dedup and persistence.
// Title and URL are always set on a candidate an adapter forwards; an item
// missing either is dropped inside the adapter.
type Candidate struct {
	Title        string
	URL          string
	Outlet       string
	OutletDomain string
	PublishedAt  time.Time
	Snippet      string
	ImageURL     string
	Author       string
	Source       Source
}

// Article is the persisted record staged for human curation. The store owns
// its lifecycle; the ingestion core only creates QUEUED/NEEDS_MANUAL rows.
type Article struct {
	ID              string
	Title           string
	URL             string
	Outlet          string
	OutletDomain    string
	PublishedAt     time.Time
	Snippet         string
	ImageURL        string
	Author          string
	Status          Status
	IngestSource    Source
	KeywordsMatched []string
	Tags            []string
	Priority        bool
	Section         string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// URLMetadata is the structured result of a single-page metadata fetch.
// FetchError and Title are independently settable; callers treat FetchError
// set with no Title as the hard-failure combination.
type URLMetadata struct {
	URL          string
	OriginalURL  string
	Title        string
	Outlet       string
	OutletDomain string
	PublishedAt  *time.Time
	Snippet      string
	ImageURL     string
	Author       string
	Paywalled    bool
	FetchError   string
}

// IngestRun is the provenance record for one adapter invocation.
type IngestRun struct {
	ID              string
	Source          Source
	FeedURL         string
	StartedAt       time.Time
	FinishedAt      *time.Time
	ArticlesFound   int
	ArticlesCreated int
	ArticlesDuped   int
	Error           string
}

// SourceResult reports one adapter invocation inside a run summary.
type SourceResult struct {
	Source          Source
	FeedURL         string
	ArticlesRaw     int
	ArticlesFound   int
	ArticlesCreated int
	ArticlesDuped   int
	Errors          []string
}

// KeywordCount pairs a keyword with how many created articles matched it.
type KeywordCount struct {
	Term  string
	Count int
}

// Summary aggregates a full ingestion run across all adapters.
type Summary struct {
	Results      []SourceResult
	TotalFound   int
	TotalCreated int
	TotalDuped   int
	KeywordStats []KeywordCount
	FinishedAt   time.Time
}

// DefaultKeywords is the fallback relevance set used when the keyword store
// is unreachable; ingestion degrades to it rather than failing the run.
var DefaultKeywords = []string{
	"housing policy",
	"zoning",
	"rent control",
	"affordable housing",
	"homelessness",
	"eviction",
	"land use",
	"tenant protection",
	"housing supply",
	"upzoning",
}
