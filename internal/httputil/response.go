package httputil

import (
	"encoding/json"
	"net/http"
)

// RespondJSON marshals data before writing headers so an encoding failure
// still produces a clean 500.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

// RespondNoContent writes a 204.
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Problem is an RFC 7807 body. Reason and the resource fields are extension
// members used by 409 responses.
type Problem struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	Status       int    `json:"status"`
	Detail       string `json:"detail,omitempty"`
	Reason       string `json:"reason,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
	ResourceID   string `json:"resource_id,omitempty"`
}

// problemTypeBase prefixes problem type URIs that carry a reason.
const problemTypeBase = "urn:belongings:problem:"

// NewProblem fills Type and Title for status.
func NewProblem(status int, detail string) *Problem {
	return &Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

// WithReason sets the reason and derives a specific problem type from it.
func (p *Problem) WithReason(reason string) *Problem {
	if reason != "" {
		p.Reason = reason
		p.Type = problemTypeBase + reason
	}
	return p
}

// WithResource names the resource the problem is about.
func (p *Problem) WithResource(resourceType, resourceID string) *Problem {
	p.ResourceType = resourceType
	p.ResourceID = resourceID
	return p
}

// Write sends the problem as application/problem+json.
func (p *Problem) Write(w http.ResponseWriter) {
	payload, err := json.Marshal(p)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}

// RespondError writes a problem response with no extension members.
func RespondError(w http.ResponseWriter, status int, detail string) {
	NewProblem(status, detail).Write(w)
}
