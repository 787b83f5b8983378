package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/docmark/internal/model"
)

var (
	convertOutputDir string
	convertJSON      bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.pdf>",
	Short: "Convert a single PDF to markdown",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, st, err := initProcessor(ctx)
		if err != nil {
			return err
		}
		defer closeStore(st)

		result, err := p.ProcessDocument(ctx, args[0])
		if err != nil {
			return eris.Wrapf(err, "convert %s", args[0])
		}

		zap.L().Info("conversion complete",
			zap.String("path", result.Path),
			zap.String("category", result.Context.Category),
			zap.Int("pages", len(result.Pages)),
			zap.Int("vision_calls", result.VisionCallsUsed),
			zap.Duration("elapsed", result.ProcessingTime),
		)

		if convertJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		return writeMarkdown(result)
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutputDir, "output", "o", "", "output directory (default from config; stdout when unset)")
	convertCmd.Flags().BoolVar(&convertJSON, "json", false, "print the full result as JSON instead of writing markdown")
	rootCmd.AddCommand(convertCmd)
}

// writeMarkdown writes result.Markdown next to other outputs in the output
// directory, or to stdout when no directory is configured.
func writeMarkdown(result *model.DocumentResult) error {
	dir := convertOutputDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if dir == "" {
		_, err := fmt.Fprintln(os.Stdout, result.Markdown)
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create output dir %s", dir)
	}

	base := filepath.Base(result.Path)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".md"
	out := filepath.Join(dir, name)
	if err := os.WriteFile(out, []byte(result.Markdown), 0o644); err != nil {
		return eris.Wrapf(err, "write %s", out)
	}

	zap.L().Info("markdown written", zap.String("file", out))
	return nil
}
