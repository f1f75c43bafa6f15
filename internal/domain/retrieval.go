package domain

// Hit sources.
const (
	HitSourceKeyword  = "keyword"
	HitSourceSemantic = "semantic"
)

// RetrievalHit is a query-time result from one of the two indexes. Hits are
// transient; they are never persisted.
type RetrievalHit struct {
	FragmentID int     `json:"fragment_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Source     string  `json:"source"`
}

// Usage holds token accounting extracted from the language-model response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Generation is the language-model provider's response to a grounded prompt.
type Generation struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// AskResult is the complete outcome of one ask-request.
type AskResult struct {
	Answer string       `json:"answer"`
	Usage  Usage        `json:"usage"`
	Record MetricRecord `json:"metrics"`
}
