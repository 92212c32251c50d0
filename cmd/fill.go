// File: cmd/fill.go
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wronai/formap/api/schemas"
	"github.com/wronai/formap/internal/browser"
	"github.com/wronai/formap/internal/config"
	"github.com/wronai/formap/internal/filler"
	"github.com/wronai/formap/internal/observability"
)

// newFillCmd creates the `fill` command: replay values into a mapped form.
func newFillCmd() *cobra.Command {
	fillCmd := &cobra.Command{
		Use:   "fill [url]",
		Short: "Fills a previously mapped form with values from a data file",
		Args:  cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			for flag, key := range map[string]string{
				"upload-dir":  "filler.upload_dir",
				"auto-files":  "filler.auto_files",
				"field-delay": "filler.field_delay",
				"headless":    "browser.headless",
			} {
				if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}

			mappingPath, _ := cmd.Flags().GetString("mapping")
			dataPath, _ := cmd.Flags().GetString("data")

			// File I/O failures are fatal and name the offending path.
			mapping, err := schemas.LoadFieldMapping(mappingPath)
			if err != nil {
				return err
			}
			data, err := schemas.LoadFormData(dataPath)
			if err != nil {
				return err
			}

			target := mapping.URL
			if len(args) == 1 {
				target = ensureScheme(args[0])
			}
			if target == "" {
				return fmt.Errorf("no target URL: pass one as an argument or use a mapping that records it")
			}

			uploadDir := cfg.Filler.UploadDir
			if uploadDir == "" {
				uploadDir = filler.DefaultUploadDir()
			}

			manager := browser.NewManager(ctx, cfg, logger)
			defer manager.Shutdown(ctx)

			session, err := manager.NewSession(ctx)
			if err != nil {
				return err
			}
			defer session.Close()

			// Navigation is the one hard failure: without the document there
			// is nothing to fill.
			if err := session.Navigate(ctx, target); err != nil {
				return err
			}
			if cfg.Browser.DismissConsent {
				session.DismissConsent(ctx)
			}

			report, err := filler.New(session, logger, filler.Options{
				UploadDir:    uploadDir,
				AutoFiles:    cfg.Filler.AutoFiles,
				FieldDelay:   cfg.Filler.FieldDelay,
				FieldTimeout: cfg.Filler.FieldTimeout,
			}).Fill(ctx, data, mapping.Fields)
			if err != nil {
				return err
			}

			// Partial fills are success; the count is the signal.
			fmt.Println(report.Summary())
			for _, res := range report.Results {
				if res.Status == schemas.StatusFailed {
					logger.Warn("Field not filled", zap.String("name", res.Name), zap.String("error", res.Err))
				}
			}
			return nil
		},
	}

	fillCmd.Flags().StringP("mapping", "m", "form_mapping.json", "Path to the field mapping file")
	fillCmd.Flags().StringP("data", "d", "form_data.json", "Path to the value/file data file")
	fillCmd.Flags().String("upload-dir", "", "Directory against which relative upload paths resolve (default ~/uploads)")
	fillCmd.Flags().Bool("auto-files", false, "Match unmapped file fields to uploads by filename")
	fillCmd.Flags().Duration("field-delay", 150*time.Millisecond, "Pause between fields")
	fillCmd.Flags().Bool("headless", true, "Run the browser headless")

	return fillCmd
}
