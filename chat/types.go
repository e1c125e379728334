package chat

import (
	"github.com/fabfab/portfolio-agent/llm"
	"github.com/fabfab/portfolio-agent/retrieval"
)

// Response is a composed answer together with the retrieval it is grounded on.
type Response struct {
	Steps    []retrieval.Stage
	Query    string
	Results  []retrieval.Match
	Answer   string
	Provider llm.ProviderID
	Model    string
}

// Generated reports whether the answer came from the LLM.
func (r Response) Generated() bool {
	return r.Provider != ""
}
