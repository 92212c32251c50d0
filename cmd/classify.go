// File: cmd/classify.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wronai/formap/api/schemas"
	"github.com/wronai/formap/internal/config"
	"github.com/wronai/formap/internal/hints"
	"github.com/wronai/formap/internal/observability"
)

// newClassifyCmd creates the `classify` command: annotate a saved mapping
// with advisory purpose hints from the LLM service.
func newClassifyCmd() *cobra.Command {
	classifyCmd := &cobra.Command{
		Use:   "classify",
		Short: "Annotates a field mapping with best-effort purpose hints from an LLM",
		Long: `Runs each mapped field's markup through the classification-hint service
and stores the guesses alongside the mapping. Hints are advisory metadata:
they never change the scanner-derived kind, name, or label.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			if cfg.Hints.APIKey == "" {
				return fmt.Errorf("hints.api_key is not configured (set FORMAP_HINTS_API_KEY)")
			}

			mappingPath, _ := cmd.Flags().GetString("mapping")
			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				output = mappingPath
			}

			mapping, err := schemas.LoadFieldMapping(mappingPath)
			if err != nil {
				return err
			}

			llm, err := hints.NewGeminiClient(cfg.Hints, logger)
			if err != nil {
				return err
			}
			classifier := hints.NewClassifier(llm, logger)

			if mapping.Hints == nil {
				mapping.Hints = make(map[string]schemas.FieldHint, len(mapping.Fields))
			}
			annotated := 0
			for _, field := range mapping.Fields {
				if field.Markup == "" {
					continue
				}
				hint := classifier.ClassifyElement(ctx, field.Markup)
				if hint == (schemas.FieldHint{}) {
					continue
				}
				mapping.Hints[field.Locator] = hint
				annotated++
			}

			if err := mapping.Save(output); err != nil {
				return err
			}
			logger.Info("Annotated mapping with hints",
				zap.Int("fields", len(mapping.Fields)),
				zap.Int("annotated", annotated),
				zap.String("path", output))
			fmt.Printf("annotated %d/%d fields\n", annotated, len(mapping.Fields))
			return nil
		},
	}

	classifyCmd.Flags().StringP("mapping", "m", "form_mapping.json", "Path to the field mapping file")
	classifyCmd.Flags().StringP("output", "o", "", "Output path (default: overwrite the mapping file)")
	_ = classifyCmd.MarkFlagRequired("mapping")

	return classifyCmd
}
