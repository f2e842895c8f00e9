package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkarpov/claimscope/internal/extract"
	"github.com/tkarpov/claimscope/internal/llm"
)

var (
	extractFromFile  string
	extractFromModel bool
	extractModelName string
	extractVersion   string
	extractTimeout   time.Duration
)

var extractCmd = &cobra.Command{
	Use:   "extract <article-id>",
	Short: "Validate and persist claim-extraction output for an article",
	Long: `Validate claim-extraction model output against the extraction contract
and persist the claims with their evidence spans. Re-running replaces the
article's previous claims atomically.

Input comes from a file (--from-file, "-" for stdin) containing recorded model
output, or from the configured model itself (--from-model), which builds the
extraction prompt from the article's cleaned text.

Example:
  claimscope extract 01J8Z0QJ3W --from-file output.json
  cat output.json | claimscope extract 01J8Z0QJ3W --from-file -
  claimscope extract 01J8Z0QJ3W --from-model`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractFromFile, "from-file", "", `path to recorded model output ("-" for stdin)`)
	extractCmd.Flags().BoolVar(&extractFromModel, "from-model", false, "invoke the configured LLM provider")
	extractCmd.Flags().StringVar(&extractModelName, "model", "", "model name override (with --from-model)")
	extractCmd.Flags().StringVar(&extractVersion, "extraction-version", "", "extraction version tag stored with the claims")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runExtract(cmd *cobra.Command, args []string) error {
	articleID := args[0]
	if extractFromFile == "" && !extractFromModel {
		return fmt.Errorf("one of --from-file or --from-model is required")
	}
	if extractFromFile != "" && extractFromModel {
		return fmt.Errorf("--from-file and --from-model are mutually exclusive")
	}

	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	rawOutput, extractionModel, err := extractionInput(ctx, app, articleID)
	if err != nil {
		return err
	}

	parsed, err := extract.ParseExtraction(rawOutput)
	if err != nil {
		return err
	}

	version := extractVersion
	if version == "" {
		version = app.cfg.LLM.Version
	}

	result, err := app.store.PersistExtraction(ctx, articleID, parsed, extractionModel, version)
	if err != nil {
		return err
	}

	fmt.Printf("Persisted %d claims with %d evidence spans for article %s\n",
		result.ClaimsCreated, result.EvidenceCreated, articleID)
	return nil
}

// extractionInput returns the raw model output plus the model name to record.
func extractionInput(ctx context.Context, a *app, articleID string) (string, string, error) {
	if extractFromFile != "" {
		var data []byte
		var err error
		if extractFromFile == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(extractFromFile)
		}
		if err != nil {
			return "", "", fmt.Errorf("read model output: %w", err)
		}
		return string(data), extractModelName, nil
	}

	article, err := a.store.GetArticleByID(ctx, articleID)
	if err != nil {
		return "", "", err
	}
	source, err := a.store.GetSourceByID(ctx, article.SourceID)
	if err != nil {
		return "", "", err
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(a.cfg.LLM))
	if err != nil {
		return "", "", err
	}
	if provider == nil {
		return "", "", fmt.Errorf("no LLM provider configured (set llm.provider or use --from-file)")
	}

	prompt := extract.BuildExtractionPrompt(source.Name, article.Title, article.CleanedText)
	resp, err := provider.ExtractClaims(ctx, llm.ExtractRequest{
		System: prompt.System,
		User:   prompt.User,
		Model:  extractModelName,
	})
	if err != nil {
		return "", "", err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Model %s used %d tokens\n", resp.Model, resp.TokensUsed)
	}
	return resp.RawJSON, resp.Model, nil
}
