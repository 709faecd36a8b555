package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/weftlabs/weft/pkg/domain"
	"github.com/weftlabs/weft/pkg/ports"
	"github.com/weftlabs/weft/pkg/report"
)

func decodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid node params: %w", err)
	}
	return nil
}

type llmParams struct {
	Prompt      string  `yaml:"prompt"`
	System      string  `yaml:"system"`
	Output      string  `yaml:"output"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	// ParseJSON unmarshals the completion into a mapping before storing;
	// agents that emit structured sub-reports set this.
	ParseJSON bool `yaml:"parse_json"`
}

// llmFactory builds a prompt-templated LLM call: interpolate the prompt
// from state, invoke the collaborator, store the (optionally JSON-decoded)
// response in the output field.
func llmFactory(params map[string]any, c ports.Collaborators) (domain.Func, error) {
	var p llmParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Prompt == "" {
		return nil, fmt.Errorf("llm node requires a prompt")
	}
	if p.Output == "" {
		return nil, fmt.Errorf("llm node requires an output field")
	}
	if c.LLM == nil {
		return nil, fmt.Errorf("llm node requires an LLM collaborator")
	}

	return func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
		completion, err := c.LLM.Complete(ctx, ports.CompletionRequest{
			System:      interpolate(p.System, state),
			Prompt:      interpolate(p.Prompt, state),
			Temperature: p.Temperature,
			MaxTokens:   p.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		if !p.ParseJSON {
			return domain.Update{p.Output: completion.Text}, nil
		}
		var decoded map[string]any
		text := stripFences(completion.Text)
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			return nil, fmt.Errorf("malformed model response: %w", err)
		}
		return domain.Update{p.Output: decoded}, nil
	}, nil
}

// stripFences removes a surrounding markdown code fence, which chat models
// frequently wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

type searchParams struct {
	Query string `yaml:"query"`
	Limit int    `yaml:"limit"`
	// Output receives the result list; declare it as an append field so
	// repeated search nodes accumulate.
	Output string `yaml:"output"`
	// Sources optionally receives result URLs (union field).
	Sources string `yaml:"sources"`
}

// searchFactory builds a retrieval call: interpolate the query, invoke the
// search collaborator, append structured results (and source URLs) to
// reducer fields.
func searchFactory(params map[string]any, c ports.Collaborators) (domain.Func, error) {
	var p searchParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Query == "" {
		return nil, fmt.Errorf("search node requires a query")
	}
	if p.Output == "" {
		return nil, fmt.Errorf("search node requires an output field")
	}
	if c.Search == nil {
		return nil, fmt.Errorf("search node requires a search collaborator")
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 5
	}

	return func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
		results, err := c.Search.Search(ctx, interpolate(p.Query, state), limit)
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, len(results))
		urls := make([]any, 0, len(results))
		for _, r := range results {
			items = append(items, map[string]any{
				"title":   r.Title,
				"url":     r.URL,
				"snippet": r.Snippet,
				"source":  r.Source,
				"score":   r.Score,
			})
			if r.URL != "" {
				urls = append(urls, r.URL)
			}
		}
		update := domain.Update{p.Output: items}
		if p.Sources != "" {
			update[p.Sources] = urls
		}
		return update, nil
	}, nil
}

type notifyParams struct {
	Channel  string `yaml:"channel"`
	Subject  string `yaml:"subject"`
	Body     string `yaml:"body"`
	Severity string `yaml:"severity"`
	// Output optionally records the delivered notification.
	Output string `yaml:"output"`
}

// notifyFactory builds an outbound notification step.
func notifyFactory(params map[string]any, c ports.Collaborators) (domain.Func, error) {
	var p notifyParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Subject == "" && p.Body == "" {
		return nil, fmt.Errorf("notify node requires a subject or body")
	}
	if c.Notifier == nil {
		return nil, fmt.Errorf("notify node requires a notifier collaborator")
	}

	return func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
		n := ports.Notification{
			Channel:  p.Channel,
			Subject:  interpolate(p.Subject, state),
			Body:     interpolate(p.Body, state),
			Severity: p.Severity,
		}
		if err := c.Notifier.Notify(ctx, n); err != nil {
			return nil, err
		}
		if p.Output == "" {
			return domain.Update{}, nil
		}
		return domain.Update{p.Output: map[string]any{
			"channel":  n.Channel,
			"subject":  n.Subject,
			"severity": n.Severity,
		}}, nil
	}, nil
}

type aggregateParams struct {
	Output   string `yaml:"output"`
	Metadata string `yaml:"metadata"`
	Platform string `yaml:"platform"`
	Model    string `yaml:"model"`
	Max      int    `yaml:"max"`
	Sources  []struct {
		Name   string  `yaml:"name"`
		Field  string  `yaml:"field"`
		Weight float64 `yaml:"weight"`
	} `yaml:"sources"`
	Sections []struct {
		Source   string `yaml:"source"`
		Section  string `yaml:"section"`
		Cap      int    `yaml:"cap"`
		Priority string `yaml:"priority"`
		Label    string `yaml:"label"`
	} `yaml:"sections"`
}

// aggregateFactory builds the terminal weighted-score aggregator from
// declarative parameters.
func aggregateFactory(params map[string]any, _ ports.Collaborators) (domain.Func, error) {
	var p aggregateParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Output == "" {
		return nil, fmt.Errorf("aggregate node requires an output field")
	}

	spec := report.Spec{
		MaxRecommendations: p.Max,
		Platform:           p.Platform,
		Model:              p.Model,
	}
	inputs := make(map[string]string, len(p.Sources))
	for _, src := range p.Sources {
		field := src.Field
		if field == "" {
			field = src.Name
		}
		spec.Sources = append(spec.Sources, report.Source{Name: src.Name, Weight: src.Weight})
		inputs[src.Name] = field
	}
	for _, sec := range p.Sections {
		spec.Sections = append(spec.Sections, report.SectionRule{
			Source:   sec.Source,
			Section:  sec.Section,
			Cap:      sec.Cap,
			Priority: sec.Priority,
			Label:    sec.Label,
		})
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return spec.Func(inputs, p.Metadata, p.Output), nil
}

// AggregateSpec rebuilds the report.Spec from aggregate node params, so the
// engine can reuse it for degraded reports.
func AggregateSpec(params map[string]any) (report.Spec, string, error) {
	var p aggregateParams
	if err := decodeParams(params, &p); err != nil {
		return report.Spec{}, "", err
	}
	spec := report.Spec{
		MaxRecommendations: p.Max,
		Platform:           p.Platform,
		Model:              p.Model,
	}
	for _, src := range p.Sources {
		spec.Sources = append(spec.Sources, report.Source{Name: src.Name, Weight: src.Weight})
	}
	for _, sec := range p.Sections {
		spec.Sections = append(spec.Sections, report.SectionRule{
			Source:   sec.Source,
			Section:  sec.Section,
			Cap:      sec.Cap,
			Priority: sec.Priority,
			Label:    sec.Label,
		})
	}
	return spec, p.Output, spec.Validate()
}
