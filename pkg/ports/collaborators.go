package ports

import "context"

// CompletionRequest is a provider-agnostic LLM prompt.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Completion is the model's response.
type Completion struct {
	Text  string
	Model string
}

// LLMClient is the injected LLM invocation capability. Implementations own
// their own retry/backoff; the engine treats a returned error as a node
// failure.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// SearchResult is one structured retrieval hit.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet,omitempty"`
	Source  string  `json:"source,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

// SearchClient is the injected search/retrieval capability.
type SearchClient interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// Notification is an outbound message (chat webhook, pager, ticket note).
type Notification struct {
	Channel  string            `json:"channel,omitempty"`
	Subject  string            `json:"subject"`
	Body     string            `json:"body"`
	Severity string            `json:"severity,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// Notifier is the injected notification capability.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Collaborators bundles the external capabilities handed to node factories
// at graph construction time. Fields may be nil; a factory that needs a
// missing collaborator must fail at construction, not mid-run.
type Collaborators struct {
	LLM      LLMClient
	Search   SearchClient
	Notifier Notifier
}
