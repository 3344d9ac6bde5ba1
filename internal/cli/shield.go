package cli

import (
	"errors"
	"fmt"
	"os"

	contentsafety "github.com/contentsafety/gosdk"
	"github.com/contentsafety/gosdk/internal/config"
	"github.com/spf13/cobra"
)

// shieldFlagSet tracks shield flags. --api-version only applies to this command, so the
// config file and environment value, which target detect, are not used here.
type shieldFlagSet struct {
	connectionFlags
	userPrompt    string
	documents     []string
	documentFiles []string
}

func bindShieldFlags(cmd *cobra.Command, flags *shieldFlagSet) {
	bindConnectionFlags(cmd, &flags.connectionFlags)
	cmd.Flags().StringVar(&flags.userPrompt, "user-prompt", "", "Prompt a user sent to the model")
	cmd.Flags().StringArrayVar(&flags.documents, "document", nil, "Document sent along with the prompt (repeatable)")
	cmd.Flags().StringArrayVar(&flags.documentFiles, "document-file", nil, "Read a document from a file (repeatable)")
}

func newShieldCmd(loader *config.Loader) *cobra.Command {
	flags := &shieldFlagSet{}

	cmd := &cobra.Command{
		Use:   "shield",
		Short: "Check a user prompt and documents for prompt injection attacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			documents, err := readDocuments(*flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("user-prompt") && len(documents) == 0 {
				return errors.New("nothing to analyze; provide --user-prompt or --document")
			}

			cfg, err := loader.Load(flags.toOverrides(cmd))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := clientOptions(cfg, flags.verbose, cmd.ErrOrStderr())
			if flags.apiVersion != "" {
				opts = append(opts, contentsafety.WithShieldAPIVersion(flags.apiVersion))
			}
			client, err := contentsafety.New(opts...)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.ShieldPrompt(cmd.Context(), flags.userPrompt, documents)
			if err != nil {
				return describeFailure(err)
			}

			return contentsafety.FprintShieldPromptResult(cmd.OutOrStdout(), result)
		},
	}
	bindShieldFlags(cmd, flags)

	return cmd
}

// readDocuments returns the --document values followed by the contents of each
// --document-file.
func readDocuments(flags shieldFlagSet) ([]string, error) {
	documents := append([]string{}, flags.documents...)
	for _, path := range flags.documentFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		documents = append(documents, string(data))
	}
	return documents, nil
}
