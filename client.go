package contentsafety

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	defaultAPIVersion = "2024-09-15-preview"
	detectRoute       = "/contentsafety/text:detectProtectedMaterialForCode"

	headerSubscriptionKey = "Ocp-Apim-Subscription-Key"
	headerAuthorization   = "Authorization"
	headerClientRequestID = "x-ms-client-request-id"
	contentTypeJSON       = "application/json; charset=utf-8"
)

// Option is a function that configures the client
type Option func(*cfg)

// WithEndpoint sets the base endpoint of your Content Safety resource, for example
// "https://my-resource.cognitiveservices.azure.com". It is used as given.
func WithEndpoint(endpoint string) Option {
	return func(c *cfg) {
		c.endpoint = endpoint
	}
}

// WithSubscriptionKey sets the key sent in the Ocp-Apim-Subscription-Key header.
func WithSubscriptionKey(key string) Option {
	return func(c *cfg) {
		c.subscriptionKey = key
	}
}

// WithAADToken sets the value sent in the Authorization header. Pass the full header value,
// including the "Bearer " prefix.
func WithAADToken(token string) Option {
	return func(c *cfg) {
		c.aadToken = token
	}
}

// WithAPIVersion overrides the api-version query parameter of Detect.
func WithAPIVersion(version string) Option {
	return func(c *cfg) {
		c.apiVersion = version
	}
}

// WithShieldAPIVersion overrides the api-version query parameter of ShieldPrompt.
func WithShieldAPIVersion(version string) Option {
	return func(c *cfg) {
		c.shieldVersion = version
	}
}

// WithHTTPClient sets the HTTP client used for requests. Use it to share a connection pool
// between clients or to install a custom transport.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *cfg) {
		c.httpc = httpc
	}
}

// WithTimeout sets a deadline for each Detect or ShieldPrompt call, retries included. If not set, only the
// caller's context and the transport defaults apply.
func WithTimeout(timeout time.Duration) Option {
	return func(c *cfg) {
		c.timeout = timeout
	}
}

// WithRetryConfig enables retries on throttled (429) and unavailable (503) responses, and on
// requests that got no response at all.
func WithRetryConfig(retryConfig RetryConfig) Option {
	return func(c *cfg) {
		c.retryConfig = retryConfig
	}
}

// WithDisableRetry disables retries. This is the default.
func WithDisableRetry() Option {
	return func(c *cfg) {
		c.retryConfig.MaxRetries = 0
	}
}

// WithLogger logs the status, headers and body of every response to logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *cfg) {
		c.logger = logger
	}
}

// cfg holds configuration for the client
type cfg struct {
	endpoint        string
	subscriptionKey string
	aadToken        string
	apiVersion      string
	shieldVersion   string
	httpc           *http.Client
	timeout         time.Duration
	retryConfig     RetryConfig
	logger          *log.Logger
}

// Client detects protected material in code and prompt attacks in text. It is safe for
// concurrent use.
type Client struct {
	config *cfg
	httpc  *http.Client
	// ownsTransport is true when the client built its own transport and may close it.
	ownsTransport bool
}

// New creates a new client. WithEndpoint is required.
func New(options ...Option) (*Client, error) {
	config := &cfg{
		apiVersion:    defaultAPIVersion,
		shieldVersion: defaultShieldAPIVersion,
	}

	for _, option := range options {
		option(config)
	}

	if config.endpoint == "" {
		return nil, ErrEndpointRequired
	}

	client := &Client{
		config: config,
		httpc:  config.httpc,
	}
	if client.httpc == nil {
		client.httpc = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
		client.ownsTransport = true
	}

	return client, nil
}

// Close releases idle connections held by the client. Clients built with WithHTTPClient leave
// the shared transport untouched.
func (c *Client) Close() error {
	if c.ownsTransport {
		c.httpc.CloseIdleConnections()
	}
	return nil
}

var (
	cleanupHandlers []func()
	cleanupMutex    sync.Mutex
	cleanupOnce     sync.Once
)

// setupCleanupHandler runs the registered handlers and exits on SIGINT or SIGTERM.
func setupCleanupHandler() {
	cleanupOnce.Do(func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-c
			runCleanupHandlers()
			os.Exit(0)
		}()
	})
}

func runCleanupHandlers() {
	cleanupMutex.Lock()
	defer cleanupMutex.Unlock()
	for _, handler := range cleanupHandlers {
		handler()
	}
}

func addCleanupHandler(handler func()) {
	cleanupMutex.Lock()
	defer cleanupMutex.Unlock()
	cleanupHandlers = append(cleanupHandlers, handler)
	setupCleanupHandler()
}

// CloseOnExit registers the client to be closed when the process receives SIGINT or SIGTERM.
// Use it in short-lived programs that may be interrupted before a deferred Close runs.
func (c *Client) CloseOnExit() {
	addCleanupHandler(func() {
		c.Close()
	})
}

// BuildURL returns the detection URL for the configured endpoint.
func (c *Client) BuildURL() string {
	return c.config.endpoint + detectRoute + "?api-version=" + c.config.apiVersion
}

// BuildRequestBody wraps code in a DetectionRequest. The code is not altered.
func (c *Client) BuildRequestBody(code string) DetectionRequest {
	return DetectionRequest{Code: code}
}

// Detect asks the service whether code contains protected material. On failure the returned
// error is a *DetectionFailure.
//
// The code is sent as a JSON string, so invalid UTF-8 sequences in it reach the service as
// U+FFFD replacement characters.
func (c *Client) Detect(ctx context.Context, code string) (*DetectionResult, error) {
	return send(ctx, c, c.BuildURL(), c.BuildRequestBody(code), interpretResponse)
}

// send posts request to target and decodes the answer with interpret, retrying according to
// the client's retry policy. Every failure it returns is a *DetectionFailure.
func send[T any](ctx context.Context, c *Client, target string, request any, interpret func(status int, body string) (T, error)) (T, error) {
	var zero T

	if c.config.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return zero, fmt.Errorf("failed to encode the request: %w", err)
	}

	// An endpoint that does not parse fails the same way on every attempt.
	if _, err := url.Parse(target); err != nil {
		return zero, &DetectionFailure{Kind: ErrTransport, Err: err}
	}

	var last *DetectionFailure
	result, err := backoff.RetryWithData[T](func() (T, error) {
		r, err := sendOnce(ctx, c, target, payload, interpret)
		if err == nil {
			return r, nil
		}
		errors.As(err, &last)
		if isRetriableError(err) {
			return zero, err
		}
		return zero, backoff.Permanent(err)
	}, backoff.WithContext(createBackoff(c.config.retryConfig), ctx))
	if err != nil {
		var failure *DetectionFailure
		if errors.As(err, &failure) {
			return zero, failure
		}
		// Retry gives back the bare context error when it stops while waiting. The last
		// response is kept for diagnostics.
		canceled := &DetectionFailure{Kind: ErrCanceled, Err: err}
		if last != nil {
			canceled.StatusCode = last.StatusCode
			canceled.RawBody = last.RawBody
			canceled.RequestID = last.RequestID
			canceled.Remote = last.Remote
		}
		return zero, canceled
	}

	return result, nil
}

func sendOnce[T any](ctx context.Context, c *Client, target string, payload []byte, interpret func(status int, body string) (T, error)) (T, error) {
	var zero T
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return zero, &DetectionFailure{Kind: ErrTransport, RequestID: requestID, Err: err}
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set(headerClientRequestID, requestID)
	if c.config.subscriptionKey != "" {
		req.Header.Set(headerSubscriptionKey, c.config.subscriptionKey)
	}
	if c.config.aadToken != "" {
		req.Header.Set(headerAuthorization, c.config.aadToken)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return zero, noResponseFailure(ctx, requestID, err)
	}
	defer resp.Body.Close()

	// The body is read in full first so error bodies are available whatever the status.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, noResponseFailure(ctx, requestID, err)
	}
	body := string(raw)
	c.logResponse(target, resp, body)

	result, err := interpret(resp.StatusCode, body)
	if err != nil {
		var failure *DetectionFailure
		if errors.As(err, &failure) {
			failure.RequestID = requestID
		}
		return zero, err
	}
	return result, nil
}

func noResponseFailure(ctx context.Context, requestID string, err error) *DetectionFailure {
	kind := ErrTransport
	if ctx.Err() != nil {
		kind = ErrCanceled
	}
	return &DetectionFailure{Kind: kind, RequestID: requestID, Err: err}
}

// interpretResponse turns a status and body into a result or a failure. A 2xx body must hold a
// DetectionResult and anything else must hold a usable DetectionErrorResponse.
func interpretResponse(status int, body string) (*DetectionResult, error) {
	if !isSuccess(status) {
		return nil, interpretError(status, body)
	}

	var analysis ProtectedMaterialAnalysis
	found, err := decodeField(body, "protectedMaterialAnalysis", &analysis)
	if err != nil || !found {
		return nil, malformedFailure(status, body, msgResponseIsNull, err)
	}
	return &DetectionResult{ProtectedMaterialAnalysis: analysis}, nil
}

// interpretError classifies a non-2xx answer as a remote or a malformed failure.
func interpretError(status int, body string) *DetectionFailure {
	var payload DetectionError
	found, err := decodeField(body, "error", &payload)
	if err != nil || !found || !payload.usable() {
		return malformedFailure(status, body, msgErrorIsNull, err)
	}
	return remoteFailure(status, body, &payload)
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

// decodeField decodes the top-level member key of body into target. The key must match
// exactly; encoding/json alone would also accept it in any letter case. A missing or null
// member reports false.
func decodeField(body, key string, target any) (bool, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &members); err != nil {
		return false, err
	}
	raw, ok := members[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) logResponse(target string, resp *http.Response, body string) {
	if c.config.logger == nil {
		return
	}
	c.config.logger.Printf("%d %s", resp.StatusCode, target)
	names := make([]string, 0, len(resp.Header))
	for name := range resp.Header {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c.config.logger.Printf("%s: %s", name, strings.Join(resp.Header[name], ", "))
	}
	c.config.logger.Print(body)
}

// PrintDetectionResult writes a human-readable summary of result to standard output. A nil
// result prints nothing.
func (c *Client) PrintDetectionResult(result *DetectionResult) {
	_ = FprintDetectionResult(os.Stdout, result)
}
