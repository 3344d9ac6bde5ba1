package contentsafety

// DetectionRequest is the body sent to the detectProtectedMaterialForCode route.
type DetectionRequest struct {
	// Code is the snippet to analyze. It is sent exactly as given.
	Code string `json:"code"`
}

// CodeCitation attributes matched code to a known source.
type CodeCitation struct {
	// License is the license of the matched source, e.g. "MIT" or "NOASSERTION".
	License string `json:"license"`
	// SourceURLs lists the locations where the matched code was found.
	SourceURLs []string `json:"sourceUrls"`
}

// ProtectedMaterialAnalysis is the service's verdict for a single snippet.
type ProtectedMaterialAnalysis struct {
	// Detected is true when the snippet matches protected material.
	Detected bool `json:"detected"`
	// CodeCitations holds one entry per matched source. It is empty when nothing was detected.
	CodeCitations []CodeCitation `json:"codeCitations"`
}

// DetectionResult is the success payload of a detection call.
type DetectionResult struct {
	ProtectedMaterialAnalysis ProtectedMaterialAnalysis `json:"protectedMaterialAnalysis"`
}

// ShieldPromptRequest is the body sent to the shieldPrompt route.
type ShieldPromptRequest struct {
	// UserPrompt is the text a user sent to a model.
	UserPrompt string `json:"userPrompt"`
	// Documents holds third-party content, such as retrieved pages or emails, that goes along
	// with the prompt.
	Documents []string `json:"documents"`
}

// PromptAnalysis is the verdict for one piece of input.
type PromptAnalysis struct {
	AttackDetected bool `json:"attackDetected"`
}

// ShieldPromptResult is the success payload of a Prompt Shields call. DocumentsAnalysis has
// one entry per document, in request order.
type ShieldPromptResult struct {
	UserPromptAnalysis PromptAnalysis   `json:"userPromptAnalysis"`
	DocumentsAnalysis  []PromptAnalysis `json:"documentsAnalysis"`
}

// DetectionErrorResponse is the failure payload returned with non-2xx statuses.
type DetectionErrorResponse struct {
	Error *DetectionError `json:"error,omitempty"`
}

// DetectionError describes a failure reported by the service. Every field is optional on the
// wire; absent and null keys both decode to the zero value.
type DetectionError struct {
	Code       string               `json:"code,omitempty"`
	Message    string               `json:"message,omitempty"`
	Target     string               `json:"target,omitempty"`
	Details    []string             `json:"details,omitempty"`
	InnerError *DetectionInnerError `json:"innererror,omitempty"`
}

// DetectionInnerError carries the service's more specific error code, when there is one.
type DetectionInnerError struct {
	Code       string `json:"code,omitempty"`
	InnerError string `json:"innererror,omitempty"`
}

// usable reports whether the error payload carries both a code and a message.
func (e *DetectionError) usable() bool {
	return e != nil && e.Code != "" && e.Message != ""
}
