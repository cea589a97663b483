package endpoint

import (
	"encoding/json"
	"strings"
)

// ErrorResponse covers the error bodies the backend produces: plain
// Symfony messages, RFC 7807 problems and API Platform violation lists.
type ErrorResponse struct {
	Message     string      `json:"message"`
	Error       string      `json:"error"`
	Detail      string      `json:"detail"`
	Title       string      `json:"title"`
	Description string      `json:"hydra:description"`
	Violations  []Violation `json:"violations"`
}

type Violation struct {
	PropertyPath string `json:"propertyPath"`
	Message      string `json:"message"`
}

func ParseErrorResponse(body []byte) ErrorResponse {
	var resp ErrorResponse

	if err := json.Unmarshal(body, &resp); err != nil {
		resp.Message = strings.TrimSpace(string(body))
		if len(resp.Message) > 256 {
			resp.Message = resp.Message[:256]
		}
	}

	return resp
}

func (r ErrorResponse) Summary() string {
	for _, candidate := range []string{r.Detail, r.Description, r.Message, r.Error, r.Title} {
		if text := strings.TrimSpace(candidate); text != "" {
			return text
		}
	}

	if len(r.Violations) > 0 {
		return r.Violations[0].Message
	}

	return ""
}

func (r ErrorResponse) Fields() map[string]any {
	if len(r.Violations) == 0 {
		return nil
	}

	fields := make(map[string]any, len(r.Violations))
	for _, v := range r.Violations {
		fields[v.PropertyPath] = v.Message
	}

	return fields
}
