// Package report implements the aggregate-report pattern: the terminal node
// that folds per-agent sub-reports into a single scored, prioritized report.
package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/weftlabs/weft/pkg/domain"
)

// DefaultMaxRecommendations bounds the flattened recommendation list.
const DefaultMaxRecommendations = 10

// weightTolerance allows for float drift when validating that source
// weights sum to 1.0.
const weightTolerance = 1e-9

// Source declares one weighted sub-report contributing to the overall score.
type Source struct {
	// Name keys the sub-report in the aggregator input and the per-source
	// score map.
	Name string `json:"name"`
	// Weight is this source's share of the overall score. Weights across
	// all sources must sum to 1.0.
	Weight float64 `json:"weight"`
}

// SectionRule draws up to Cap recommendation strings from one section of a
// sub-report and tags them with a source label and priority. Rules are
// applied in declaration order; that order is the precedence of the final
// list.
type SectionRule struct {
	Source   string `json:"source"`
	Section  string `json:"section"`
	Cap      int    `json:"cap"`
	Priority string `json:"priority"`
	// Label overrides the tag on emitted recommendations.
	// Defaults to "Source - Section".
	Label string `json:"label,omitempty"`
}

func (r SectionRule) label() string {
	if r.Label != "" {
		return r.Label
	}
	return r.Source + " - " + r.Section
}

// Spec is a declarative aggregator: weighted sources, ordered section rules,
// and an overall cap. The zero Spec is usable for degraded reports only.
type Spec struct {
	Sources  []Source      `json:"sources"`
	Sections []SectionRule `json:"sections"`
	// MaxRecommendations bounds the flattened list.
	// Defaults to DefaultMaxRecommendations.
	MaxRecommendations int    `json:"max_recommendations,omitempty"`
	Platform           string `json:"platform,omitempty"`
	Model              string `json:"model,omitempty"`
}

// Validate checks weights and caps. Called at graph construction.
func (s Spec) Validate() error {
	sum := 0.0
	seen := make(map[string]struct{}, len(s.Sources))
	for _, src := range s.Sources {
		if src.Name == "" {
			return fmt.Errorf("aggregator source with empty name")
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("duplicate aggregator source %q", src.Name)
		}
		seen[src.Name] = struct{}{}
		if src.Weight < 0 {
			return fmt.Errorf("aggregator source %q has negative weight", src.Name)
		}
		sum += src.Weight
	}
	if len(s.Sources) > 0 && math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("aggregator weights sum to %v, want 1.0", sum)
	}
	for _, rule := range s.Sections {
		if rule.Cap <= 0 {
			return fmt.Errorf("aggregator section %q/%q has non-positive cap", rule.Source, rule.Section)
		}
		if _, ok := seen[rule.Source]; !ok && len(s.Sources) > 0 {
			return fmt.Errorf("aggregator section references unknown source %q", rule.Source)
		}
	}
	return nil
}

func (s Spec) maxRecs() int {
	if s.MaxRecommendations > 0 {
		return s.MaxRecommendations
	}
	return DefaultMaxRecommendations
}

// Build folds the named sub-reports into a report. A missing sub-report or
// sub-score contributes zero; no sub-reports at all is a valid terminal
// state with zeroed scores and an empty recommendation list.
func (s Spec) Build(sub map[string]map[string]any, metadata map[string]any) *domain.Report {
	rep := &domain.Report{
		SourceScores:    make(map[string]float64, len(s.Sources)),
		Recommendations: []domain.Recommendation{},
		Findings:        make(map[string]map[string]any, len(sub)),
		Metadata:        metadata,
		Platform:        s.Platform,
		Model:           s.Model,
		GeneratedAt:     time.Now().UTC(),
	}

	overall := 0.0
	for _, src := range s.Sources {
		score := subScore(sub[src.Name])
		overall += score * src.Weight
		rep.SourceScores[src.Name] = round1(score)
	}
	rep.OverallScore = round1(overall)

	// Flatten capped per-section picks in declaration order; no re-sorting
	// by priority. Top-N in declared precedence order is deliberate.
	limit := s.maxRecs()
	for _, rule := range s.Sections {
		if len(rep.Recommendations) >= limit {
			break
		}
		for _, text := range sectionRecommendations(sub[rule.Source], rule.Section, rule.Cap) {
			if len(rep.Recommendations) >= limit {
				break
			}
			rep.Recommendations = append(rep.Recommendations, domain.Recommendation{
				Source:   rule.label(),
				Priority: rule.Priority,
				Text:     text,
			})
		}
	}

	// Full untruncated detail kept for audit.
	for name, detail := range sub {
		if detail != nil {
			rep.Findings[name] = detail
		}
	}

	return rep
}

// Degraded produces a structurally valid, error-flagged report: zeroed
// scores for every declared source, no recommendations, and the explanatory
// message in Error.
func (s Spec) Degraded(msg string, metadata map[string]any) *domain.Report {
	rep := &domain.Report{
		SourceScores:    make(map[string]float64, len(s.Sources)),
		Recommendations: []domain.Recommendation{},
		Metadata:        metadata,
		Platform:        s.Platform,
		Model:           s.Model,
		GeneratedAt:     time.Now().UTC(),
		Error:           msg,
	}
	for _, src := range s.Sources {
		rep.SourceScores[src.Name] = 0
	}
	return rep
}

// Func builds the aggregator node body. inputs maps source name to the
// state field carrying that source's sub-report; metaField (optional) names
// a state field with caller-supplied metadata; outField receives the report.
func (s Spec) Func(inputs map[string]string, metaField, outField string) domain.Func {
	return func(ctx context.Context, state domain.Snapshot) (domain.Update, error) {
		sub := make(map[string]map[string]any, len(inputs))
		for name, field := range inputs {
			if m := state.Map(field); m != nil {
				sub[name] = m
			}
		}
		var metadata map[string]any
		if metaField != "" {
			metadata = state.Map(metaField)
		}
		return domain.Update{outField: s.Build(sub, metadata)}, nil
	}
}

// Node wraps Func into a terminal graph node.
func (s Spec) Node(id, label string, inputs map[string]string, metaField, outField string) domain.Node {
	return domain.Node{
		ID:     id,
		Label:  label,
		Writes: []string{outField},
		Func:   s.Func(inputs, metaField, outField),
	}
}

func subScore(sub map[string]any) float64 {
	if sub == nil {
		return 0
	}
	return asFloat(sub["overall_score"])
}

func sectionRecommendations(sub map[string]any, section string, limit int) []string {
	if sub == nil {
		return nil
	}
	sec, ok := sub[section].(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := sec["recommendations"].([]any)
	if !ok {
		// Tolerate pre-typed string slices from code-built sub-reports.
		if typed, ok := sec["recommendations"].([]string); ok {
			if len(typed) > limit {
				typed = typed[:limit]
			}
			return append([]string(nil), typed...)
		}
		return nil
	}
	out := make([]string, 0, limit)
	for _, v := range raw {
		if len(out) >= limit {
			break
		}
		if text, ok := v.(string); ok {
			out = append(out, text)
		}
	}
	return out
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	default:
		return 0
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
