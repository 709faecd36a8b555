package registry

import (
	"fmt"
	"strings"

	"github.com/weftlabs/weft/pkg/domain"
)

// interpolate substitutes {{field}} placeholders with state values.
// Non-string values are rendered with fmt.Sprint; a missing field renders
// empty, matching how prompt templates tolerate optional context.
func interpolate(template string, state domain.Snapshot) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	var sb strings.Builder
	rest := template
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			sb.WriteString(rest)
			break
		}
		closing := strings.Index(rest[open:], "}}")
		if closing < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:open])
		field := strings.TrimSpace(rest[open+2 : open+closing])
		if v, ok := state[field]; ok && v != nil {
			sb.WriteString(fmt.Sprint(v))
		}
		rest = rest[open+closing+2:]
	}
	return sb.String()
}
