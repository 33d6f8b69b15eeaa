package batch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome records the result of one id within a multi-id tool call.
type Outcome struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "success" or "error"
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Summary aggregates the outcomes of a multi-id tool call.
type Summary struct {
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Outcomes  []Outcome `json:"outcomes"`
}

// ParseIDs accepts a tool argument that may be a single id string, an array
// of id strings, or a JSON-encoded array sent as a plain string. Assistants
// routinely produce all three shapes for the same parameter.
func ParseIDs(param interface{}, name string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", name)
	}

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", name)
		}
		if strings.HasPrefix(v, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err == nil {
				if len(arr) == 0 {
					return nil, fmt.Errorf("%s cannot be empty", name)
				}
				return arr, nil
			}
			// Not valid JSON, treat as a literal id
		}
		return []string{v}, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", name)
		}
		ids := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", name, i)
			}
			if s == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", name, i)
			}
			ids = append(ids, s)
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", name)
	}
}

// Run applies fn to each id in order, recording one outcome per id.
// A failing id does not stop the rest of the batch.
func Run(ids []string, fn func(id string) (string, error)) []Outcome {
	outcomes := make([]Outcome, 0, len(ids))

	for _, id := range ids {
		o := Outcome{ID: id}
		detail, err := fn(id)
		if err != nil {
			o.Status = "error"
			o.Error = err.Error()
		} else {
			o.Status = "success"
			o.Detail = detail
		}
		outcomes = append(outcomes, o)
	}

	return outcomes
}

// Format renders outcomes as an indented JSON summary for a tool response.
func Format(outcomes []Outcome) string {
	s := Summary{
		Total:    len(outcomes),
		Outcomes: outcomes,
	}

	for _, o := range outcomes {
		if o.Status == "success" {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}

	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}
