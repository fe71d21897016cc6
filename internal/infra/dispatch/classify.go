package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/vietddude/dispatcher/internal/core/domain"
)

// Classifier turns a raw dispatch response into an Outcome. The
// success-code set covers business codes the service reports for
// already-equivalent states; they count as success, not as errors.
type Classifier struct {
	successCodes map[int]bool
}

// NewClassifier creates a classifier for the configured success codes.
func NewClassifier(successCodes []int) *Classifier {
	codes := make(map[int]bool, len(successCodes))
	for _, c := range successCodes {
		codes[c] = true
	}
	return &Classifier{successCodes: codes}
}

// Classify maps an HTTP status and response body to an Outcome.
//
// Auth rejections are transport failures: the session does not own
// credential refresh, and counting them as business failures would
// poison the breaker with a fault the caller cannot act on.
func (c *Classifier) Classify(status int, body []byte) domain.Outcome {
	if status == 401 || status == 403 {
		return domain.TransportFailure(fmt.Errorf("auth rejected: status %d", status))
	}
	if status < 200 || status >= 300 {
		return domain.TransportFailure(fmt.Errorf("unexpected status %d", status))
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.TransportFailure(fmt.Errorf("malformed response: %w", err))
	}

	errorID, info := extractErrorInfo(data)

	if flag, ok := data["success"].(bool); ok && flag {
		return domain.Success(errorID, info)
	}
	if c.successCodes[errorID] {
		return domain.Success(errorID, info)
	}

	return domain.BusinessFailure(errorID, info)
}

// extractErrorInfo pulls error_id and info out of the response. The
// service nests them under msg.detail but older deployments report
// them at the top level, so both shapes are accepted.
func extractErrorInfo(data map[string]any) (int, string) {
	errorID := 0
	info := ""

	if msg, ok := data["msg"].(map[string]any); ok {
		if detail, ok := msg["detail"].(map[string]any); ok {
			errorID = asInt(detail["error_id"])
			if s, ok := detail["info"].(string); ok {
				info = s
			}
		}
	}
	if s, ok := data["msg"].(string); ok && s != "" {
		info = s
	}

	if errorID == 0 {
		errorID = asInt(data["error_id"])
	}
	if info == "" {
		if s, ok := data["info"].(string); ok {
			info = s
		}
	}

	return errorID, info
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		var parsed int
		if _, err := fmt.Sscanf(n, "%d", &parsed); err == nil {
			return parsed
		}
	}
	return 0
}
