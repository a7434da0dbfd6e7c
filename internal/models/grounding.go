package models

// Snippet is a supporting reference retrieved for a classified signal.
// Score is a relevance measure in [0,1] owned by the search backend.
type Snippet struct {
	DocID   string  `json:"doc_id"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Example is an organisation-specific remediation example injected by
// the personalization agent.
type Example struct {
	Example string `json:"example"`
}
