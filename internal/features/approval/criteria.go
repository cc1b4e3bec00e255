package approval

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RequiredRoles returns the roles that must approve ev, in flow order. A step
// contributes its role once if any of its criteria match. Unknown criterion
// keys are ignored and repeated roles are kept.
func RequiredRoles(flow *FlowDefinition, ev EventAttributes) []string {
	if flow == nil {
		return nil
	}

	roles := make([]string, 0, len(flow.Steps))
	for _, step := range flow.Steps {
		if stepMatches(step, ev) {
			roles = append(roles, step.Role)
		}
	}
	return roles
}

func stepMatches(step FlowStep, ev EventAttributes) bool {
	for key, value := range step.Criteria {
		if criterionMatches(key, value, ev) {
			return true
		}
	}
	return false
}

func criterionMatches(key string, value any, ev EventAttributes) bool {
	switch key {
	case CriterionLocation:
		location, ok := value.(string)
		return ok && ev.Location == location
	case CriterionMinAttendees:
		threshold, ok := toFloat(value)
		return ok && float64(ev.ExpectedAttendance) >= threshold
	default:
		return false
	}
}

// DedupeRoles keeps the first occurrence of each role
func DedupeRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		if _, ok := seen[role]; ok {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	return out
}

// toFloat accepts the numeric shapes criteria arrive in from BSON and JSON
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
