package domain

// Analysis is the structured result produced by the analysis consumer from a
// query and its retrieved chunks.
type Analysis struct {
	// Summary is the headline answer to the query.
	Summary string `json:"summary"`

	// Findings are individual supporting observations.
	Findings []string `json:"findings"`

	// Confidence is the model's self-reported confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Sources lists the chunks (or the full-document fallback) the analysis
	// was grounded on, so reporting always has something to cite.
	Sources []AnalysisSource `json:"sources"`
}

// AnalysisSource identifies one piece of text the analysis drew from.
type AnalysisSource struct {
	// Title is the originating document title.
	Title string `json:"title"`

	// Similarity is the retrieval score, or 1.0 for the synthetic
	// full-document fallback source.
	Similarity float64 `json:"similarity"`
}
