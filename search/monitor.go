package search

import "github.com/ecoinsight/ecoinsight/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps during a search.
type RetrievalMonitor interface {
	Start(query string)
	AfterEmbedding(vector []float32)
	AfterSimilaritySearch(hits int)
	FallbackTriggered(reason string)
	Finish(outcome *core.RetrievalOutcome)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                  {}
func (n *noopMonitor) AfterEmbedding(_ []float32)      {}
func (n *noopMonitor) AfterSimilaritySearch(_ int)     {}
func (n *noopMonitor) FallbackTriggered(_ string)      {}
func (n *noopMonitor) Finish(_ *core.RetrievalOutcome) {}
