// Package contentsafety is a Go client for the Azure AI Content Safety "protected material for
// code" and Prompt Shields APIs.
//
// The protected material API tells you whether a code snippet matches public source code that
// is covered by a license, and if so, where that code was found. This package sends one snippet
// per call and returns the service's verdict.
//
// # Quick Start
//
// You'll need the endpoint of a Content Safety resource and either its subscription key or an
// Entra ID (AAD) token.
//
//	import contentsafety "github.com/contentsafety/gosdk"
//
//	client, err := contentsafety.New(
//		contentsafety.WithEndpoint("https://my-resource.cognitiveservices.azure.com"),
//		contentsafety.WithSubscriptionKey("your-subscription-key"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Detect(context.Background(), "def hello():\n    print('hi')\n")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client.PrintDetectionResult(result)
//
// # Prompt Shields
//
// ShieldPrompt checks a user prompt, and any documents sent along with it, for prompt injection
// attacks. It uses the same client, credentials and retry policy:
//
//	shield, err := client.ShieldPrompt(ctx, userPrompt, []string{emailBody})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if shield.UserPromptAnalysis.AttackDetected {
//		// refuse the prompt
//	}
//
// # Authentication
//
// WithSubscriptionKey sets the Ocp-Apim-Subscription-Key header and WithAADToken sets the
// Authorization header. Both headers are sent when both values are set and the service decides
// which one it accepts. Empty values are not sent.
//
// # Error Handling
//
// Every error returned by Detect or ShieldPrompt is a *DetectionFailure. Its Kind is one of:
//
//   - ErrTransport: no response was received (DNS, TLS, connection reset, ...)
//   - ErrRemote: the service answered with a structured error, e.g. InvalidRequest
//   - ErrMalformedResponse: the body could not be decoded into the expected shape
//   - ErrCanceled: the context was canceled or its deadline passed
//
// Check the kind with errors.Is, or extract the failure to read the code, message and raw body:
//
//	result, err := client.Detect(ctx, code)
//	if err != nil {
//		var failure *contentsafety.DetectionFailure
//		if errors.As(err, &failure) && errors.Is(err, contentsafety.ErrRemote) {
//			fmt.Printf("rejected: %s (%s)\n", failure.Message, failure.Code)
//		}
//		return err
//	}
//
// # Retries
//
// By default each call makes exactly one attempt. Retries on throttled (429) and
// unavailable (503) responses, and on connection failures, can be turned on:
//
//	client, err := contentsafety.New(
//		contentsafety.WithEndpoint(endpoint),
//		contentsafety.WithSubscriptionKey(key),
//		contentsafety.WithRetryConfig(contentsafety.RetryConfig{
//			MaxRetries:      3,
//			InitialInterval: 500 * time.Millisecond,
//			MaxInterval:     30 * time.Second,
//			Multiplier:      2.0,
//		}),
//	)
package contentsafety
