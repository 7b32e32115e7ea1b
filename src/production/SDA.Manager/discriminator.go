package manager

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	accessor "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Accessor"
	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
)

// CodeMultiStatus is the application error code of a group request that failed on some members
const CodeMultiStatus = "multi_status"

// multiStatus is the body the manager sends with 207
type multiStatus struct {
	ID        string                     `json:"id,omitempty"`
	Responses []sdamodels.MemberResponse `json:"responses"`
}

// Discriminator judges manager responses. A 2xx other than 207 is a success.
// 207 means a group request reached only some members and is reported as an application error.
func Discriminator(status int, body []byte) (json.RawMessage, error) {
	if status != http.StatusMultiStatus {
		return json.RawMessage(body), nil
	}

	var ms multiStatus
	if err := json.Unmarshal(body, &ms); err != nil {
		return nil, fmt.Errorf("malformed multi-status response: %w", err)
	}

	return nil, &accessor.ApplicationError{
		Code:    CodeMultiStatus,
		Message: failedMembersMessage(ms.Responses),
		Details: json.RawMessage(body),
	}
}

// MemberResponses extracts per-member outcomes from a multi-status application error
func MemberResponses(err error) []sdamodels.MemberResponse {
	ae, ok := accessor.AsApplication(err)
	if !ok || ae.Code != CodeMultiStatus {
		return nil
	}
	var ms multiStatus
	if json.Unmarshal(ae.Details, &ms) != nil {
		return nil
	}
	return ms.Responses
}

func failedMembersMessage(responses []sdamodels.MemberResponse) string {
	failed := make([]string, 0, len(responses))
	for _, r := range responses {
		if r.Code >= 200 && r.Code <= 299 {
			continue
		}
		entry := fmt.Sprintf("%s (%d)", r.ID, r.Code)
		if r.Message != "" {
			entry = fmt.Sprintf("%s (%d: %s)", r.ID, r.Code, r.Message)
		}
		failed = append(failed, entry)
	}
	if len(failed) == 0 {
		return "request partially failed"
	}
	return "request failed on " + strings.Join(failed, ", ")
}
