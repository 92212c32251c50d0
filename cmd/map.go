// File: cmd/map.go
package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wronai/formap/api/schemas"
	"github.com/wronai/formap/internal/browser"
	"github.com/wronai/formap/internal/config"
	"github.com/wronai/formap/internal/observability"
	"github.com/wronai/formap/internal/scanner"
)

// newMapCmd creates the `map` command: scan pages, write field mappings.
func newMapCmd() *cobra.Command {
	mapCmd := &cobra.Command{
		Use:   "map [urls...]",
		Short: "Detects form fields on pages and writes a field mapping per page",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind scan flags onto their config keys so flags override file
			// and env values with the right precedence.
			for flag, key := range map[string]string{
				"include-hidden":  "scanner.include_hidden",
				"include-buttons": "scanner.include_buttons",
				"max-fields":      "scanner.max_fields",
				"headless":        "browser.headless",
				"timeout":         "network.navigation_timeout",
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

			output, _ := cmd.Flags().GetString("output")
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			if concurrency < 1 {
				concurrency = 1
			}
			if output == "" && len(args) > 1 {
				return fmt.Errorf("--output is required when mapping more than one URL")
			}

			targets := make([]string, len(args))
			for i, t := range args {
				targets[i] = ensureScheme(t)
			}

			manager := browser.NewManager(ctx, cfg, logger)
			defer manager.Shutdown(ctx)

			// Each target gets its own isolated session; sessions share no
			// mutable state, so mapping several pages in parallel is safe.
			g, groupCtx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)

			var mu sync.Mutex
			var failures []string

			for _, target := range targets {
				g.Go(func() error {
					if err := mapOne(groupCtx, manager, cfg, target, output, len(targets) > 1); err != nil {
						logger.Error("Mapping failed", zap.String("url", target), zap.Error(err))
						mu.Lock()
						failures = append(failures, target)
						mu.Unlock()
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			if len(failures) == len(targets) {
				return fmt.Errorf("all %d targets failed to map", len(targets))
			}
			if len(failures) > 0 {
				logger.Warn("Some targets failed to map", zap.Strings("urls", failures))
			}
			return nil
		},
	}

	mapCmd.Flags().StringP("output", "o", "", "Output file (or directory for multiple URLs). Defaults to stdout for a single URL.")
	mapCmd.Flags().Bool("include-hidden", false, "Include hidden fields in the mapping")
	mapCmd.Flags().Bool("include-buttons", false, "Include submit/button controls in the mapping")
	mapCmd.Flags().Int("max-fields", 0, "Stop after this many fields (0 = unlimited)")
	mapCmd.Flags().IntP("concurrency", "j", 1, "Number of pages to map in parallel")
	mapCmd.Flags().Duration("timeout", 45*time.Second, "Navigation timeout per page")
	mapCmd.Flags().Bool("headless", true, "Run the browser headless")

	return mapCmd
}

// mapOne scans a single target in its own session.
func mapOne(ctx context.Context, manager *browser.Manager, cfg *config.Config, target, output string, multi bool) error {
	logger := observability.GetLogger()

	session, err := manager.NewSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Navigate(ctx, target); err != nil {
		return err
	}
	if cfg.Browser.DismissConsent {
		session.DismissConsent(ctx)
	}
	if cfg.Scanner.ScrollFirst {
		// Bounce to the bottom and back to trigger lazy-loaded widgets.
		if err := session.ScrollPage(ctx, "bottom"); err == nil {
			_ = session.ScrollPage(ctx, "top")
		}
	}

	fields, err := scanner.New(session, logger).Scan(ctx, scanner.Options{
		IncludeHidden:   cfg.Scanner.IncludeHidden,
		IncludeButtons:  cfg.Scanner.IncludeButtons,
		MaxFields:       cfg.Scanner.MaxFields,
		LabelTextBudget: cfg.Scanner.LabelTextBudget,
	})
	if err != nil {
		return err
	}

	mapping := schemas.NewFieldMapping(target, fields)
	if output == "" {
		raw, err := mapping.MarshalIndent()
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	}

	path := resolveOutputPath(output, target, multi)
	if err := mapping.Save(path); err != nil {
		return err
	}
	logger.Info("Saved field mapping", zap.String("url", target), zap.Int("fields", len(fields)), zap.String("path", path))
	return nil
}

// ensureScheme defaults bare hostnames to https.
func ensureScheme(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return "https://" + target
}

// resolveOutputPath decides where one target's mapping lands. Multiple
// targets treat output as a directory of slug-named files.
func resolveOutputPath(output, target string, multi bool) string {
	if !multi && !isDir(output) {
		return output
	}
	return filepath.Join(output, slugify(target)+".json")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// slugify turns a URL into a safe file stem: host plus path, non-alphanumerics
// folded to underscores.
func slugify(target string) string {
	stem := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		stem = u.Host + u.Path
	}
	stem = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, stem)
	return strings.Trim(stem, "_")
}
