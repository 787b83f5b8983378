package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/docmark/internal/pipeline"
)

var batchOutputDir string

var batchCmd = &cobra.Command{
	Use:   "batch <dir-or-files...>",
	Short: "Convert multiple PDFs concurrently",
	Long:  "Converts every PDF named on the command line; directory arguments are expanded to the PDFs they contain. Documents run concurrently up to batch.max_concurrent_documents.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		paths, err := collectPDFs(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return eris.New("no PDF files found")
		}

		p, st, err := initProcessor(ctx)
		if err != nil {
			return err
		}
		defer closeStore(st)

		zap.L().Info("batch starting",
			zap.Int("documents", len(paths)),
			zap.Int("concurrency", cfg.Batch.MaxConcurrentDocuments),
		)

		outcomes := p.ProcessBatch(ctx, paths)

		failed := 0
		for _, o := range outcomes {
			if o.Err != nil {
				failed++
				continue
			}
			if err := writeBatchMarkdown(o); err != nil {
				zap.L().Error("batch output write failed",
					zap.String("path", o.Path),
					zap.Error(err),
				)
			}
		}

		formatBatchSummary(os.Stdout, outcomes)

		if failed > 0 {
			return eris.Errorf("%d of %d documents failed", failed, len(outcomes))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutputDir, "output", "o", "", "output directory (default from config)")
	rootCmd.AddCommand(batchCmd)
}

// collectPDFs expands directory arguments into the PDFs they contain and
// passes file arguments through.
func collectPDFs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "stat %s", arg)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, eris.Wrapf(err, "read dir %s", arg)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	return paths, nil
}

func writeBatchMarkdown(o pipeline.BatchOutcome) error {
	dir := batchOutputDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create output dir %s", dir)
	}

	base := filepath.Base(o.Path)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".md"
	out := filepath.Join(dir, name)
	return eris.Wrapf(os.WriteFile(out, []byte(o.Result.Markdown), 0o644), "write %s", out)
}

// formatBatchSummary writes a per-document result table to w.
func formatBatchSummary(out io.Writer, outcomes []pipeline.BatchOutcome) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FILE\tSTATUS\tPAGES\tVISION\tCATEGORY\tDURATION")

	for _, o := range outcomes {
		name := filepath.Base(o.Path)
		if o.Err != nil {
			_, _ = fmt.Fprintf(w, "%s\tfailed\t-\t-\t-\t-\n", name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\tok\t%d\t%d\t%s\t%s\n",
			name,
			len(o.Result.Pages),
			o.Result.VisionCallsUsed,
			o.Result.Context.Category,
			o.Result.ProcessingTime.Round(time.Second),
		)
	}
	_ = w.Flush()
}
