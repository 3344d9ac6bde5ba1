package contentsafety

import "context"

const (
	defaultShieldAPIVersion = "2024-09-01"
	shieldRoute             = "/contentsafety/text:shieldPrompt"
)

// BuildShieldURL returns the Prompt Shields URL for the configured endpoint.
func (c *Client) BuildShieldURL() string {
	return c.config.endpoint + shieldRoute + "?api-version=" + c.config.shieldVersion
}

// BuildShieldRequestBody wraps a user prompt and its documents. A nil documents slice is sent
// as an empty array.
func (c *Client) BuildShieldRequestBody(userPrompt string, documents []string) ShieldPromptRequest {
	if documents == nil {
		documents = []string{}
	}
	return ShieldPromptRequest{UserPrompt: userPrompt, Documents: documents}
}

// ShieldPrompt asks the service whether userPrompt or any of documents contains a prompt
// injection attack. It shares the headers, timeout and retry policy of Detect, and on failure
// the returned error is a *DetectionFailure of the same kinds.
func (c *Client) ShieldPrompt(ctx context.Context, userPrompt string, documents []string) (*ShieldPromptResult, error) {
	return send(ctx, c, c.BuildShieldURL(), c.BuildShieldRequestBody(userPrompt, documents), interpretShieldResponse)
}

// interpretShieldResponse is interpretResponse for the shieldPrompt route. A 2xx body must
// hold userPromptAnalysis.
func interpretShieldResponse(status int, body string) (*ShieldPromptResult, error) {
	if !isSuccess(status) {
		return nil, interpretError(status, body)
	}

	var result ShieldPromptResult
	found, err := decodeField(body, "userPromptAnalysis", &result.UserPromptAnalysis)
	if err != nil || !found {
		return nil, malformedFailure(status, body, msgResponseIsNull, err)
	}
	if _, err := decodeField(body, "documentsAnalysis", &result.DocumentsAnalysis); err != nil {
		return nil, malformedFailure(status, body, msgResponseIsNull, err)
	}
	return &result, nil
}
