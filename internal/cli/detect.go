package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	contentsafety "github.com/contentsafety/gosdk"
	"github.com/contentsafety/gosdk/internal/config"
	"github.com/spf13/cobra"
)

// connectionFlags tracks the flags shared by every command that calls the service.
type connectionFlags struct {
	endpoint        string
	subscriptionKey string
	aadToken        string
	apiVersion      string
	timeout         string
	retries         uint64
	verbose         bool
}

func bindConnectionFlags(cmd *cobra.Command, flags *connectionFlags) {
	cmd.Flags().StringVar(&flags.endpoint, "endpoint", "", "Content Safety endpoint, e.g. https://<resource>.cognitiveservices.azure.com")
	cmd.Flags().StringVar(&flags.subscriptionKey, "subscription-key", "", "Subscription key sent as Ocp-Apim-Subscription-Key")
	cmd.Flags().StringVar(&flags.aadToken, "aad-token", "", "Authorization header value, e.g. \"Bearer <token>\"")
	cmd.Flags().StringVar(&flags.apiVersion, "api-version", "", "Override the api-version query parameter")
	cmd.Flags().StringVar(&flags.timeout, "timeout", "", "Deadline for the whole call, e.g. 30s (default: none)")
	cmd.Flags().Uint64Var(&flags.retries, "retries", 0, "Retries on 429/503 responses and connection failures (default: no retries)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log response status, headers and body to stderr")
}

func (f connectionFlags) toOverrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{
		Endpoint:        f.endpoint,
		SubscriptionKey: f.subscriptionKey,
		AADToken:        f.aadToken,
		APIVersion:      f.apiVersion,
		Timeout:         f.timeout,
	}
	if cmd.Flags().Changed("retries") {
		retries := f.retries
		ov.Retries = &retries
	}
	return ov
}

// detectFlagSet tracks detect flags before they are converted into config overrides.
type detectFlagSet struct {
	connectionFlags
	code string
	file string
}

func bindDetectFlags(cmd *cobra.Command, flags *detectFlagSet) {
	bindConnectionFlags(cmd, &flags.connectionFlags)
	cmd.Flags().StringVar(&flags.code, "code", "", "Code snippet to analyze")
	cmd.Flags().StringVar(&flags.file, "file", "", "Read the snippet from a file, or - for stdin")
}

func newDetectCmd(loader *config.Loader) *cobra.Command {
	flags := &detectFlagSet{}

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Check a code snippet for protected material",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readSnippet(cmd, *flags)
			if err != nil {
				return err
			}

			cfg, err := loader.Load(flags.toOverrides(cmd))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := clientOptions(cfg, flags.verbose, cmd.ErrOrStderr())
			if cfg.APIVersion != "" {
				opts = append(opts, contentsafety.WithAPIVersion(cfg.APIVersion))
			}
			client, err := contentsafety.New(opts...)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.Detect(cmd.Context(), code)
			if err != nil {
				return describeFailure(err)
			}

			return contentsafety.FprintDetectionResult(cmd.OutOrStdout(), result)
		},
	}
	bindDetectFlags(cmd, flags)
	cmd.MarkFlagsMutuallyExclusive("code", "file")

	return cmd
}

// clientOptions converts cfg into client options. The api-version is left to the caller since
// each route has its own.
func clientOptions(cfg config.Config, verbose bool, logOut io.Writer) []contentsafety.Option {
	opts := []contentsafety.Option{
		contentsafety.WithEndpoint(cfg.Endpoint),
		contentsafety.WithSubscriptionKey(cfg.SubscriptionKey),
		contentsafety.WithAADToken(cfg.AADToken),
		contentsafety.WithTimeout(cfg.Timeout),
	}
	if cfg.Retries > 0 {
		retry := contentsafety.DefaultRetryConfig()
		retry.MaxRetries = cfg.Retries
		opts = append(opts, contentsafety.WithRetryConfig(retry))
	}
	if verbose {
		opts = append(opts, contentsafety.WithLogger(log.New(logOut, "", log.LstdFlags)))
	}
	return opts
}

func readSnippet(cmd *cobra.Command, flags detectFlagSet) (string, error) {
	switch {
	case flags.file == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case flags.file != "":
		data, err := os.ReadFile(flags.file)
		if err != nil {
			return "", fmt.Errorf("read snippet: %w", err)
		}
		return string(data), nil
	case cmd.Flags().Changed("code"):
		return flags.code, nil
	}
	return "", errors.New("no code to analyze; provide --code or --file")
}

// describeFailure adds the raw body to malformed-response failures so it reaches the terminal.
func describeFailure(err error) error {
	var failure *contentsafety.DetectionFailure
	if errors.As(err, &failure) && errors.Is(err, contentsafety.ErrMalformedResponse) {
		return fmt.Errorf("%w\nresponse body: %s", err, failure.RawBody)
	}
	return err
}
