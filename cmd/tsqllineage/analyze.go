package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sql-lineage/tsqllineage/batch"
	"github.com/sql-lineage/tsqllineage/ingest"
	"github.com/sql-lineage/tsqllineage/lineage"
	"github.com/sql-lineage/tsqllineage/serialize"
)

var (
	analyzeInput         string
	analyzeSuffix        string
	analyzeFormat        string
	analyzeMaxConcurrent int
	analyzeCompact       bool
	analyzeCaseSensitive bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract lineage graphs from a directory of serialized T-SQL ASTs",
	Long:  `Walks --input for files matching --suffix, decodes each as a Script, analyzes every script concurrently, and prints one serialized lineage document per script.`,
	Run: func(cmd *cobra.Command, args []string) {
		source := batch.NewSource()
		scripts, err := source.ReadAll(context.Background(), analyzeInput, analyzeSuffix, ingest.Decode)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tsqllineage: %v\n", err)
			os.Exit(1)
		}
		if len(scripts) == 0 {
			fmt.Fprintf(os.Stderr, "tsqllineage: no files matching %q under %s\n", analyzeSuffix, analyzeInput)
			os.Exit(1)
		}

		opts := []batch.Option{
			batch.WithMaxConcurrentBatches(analyzeMaxConcurrent),
			batch.WithCaseSensitiveIdentifiers(analyzeCaseSensitive),
		}
		if analyzeCompact {
			opts = append(opts, batch.WithCompactOnFinish(outputColumns))
		}
		runner := batch.NewRunner(opts...)
		results := runner.AnalyzeAll(context.Background(), scripts)

		for i, res := range results {
			if res.Err != nil {
				fmt.Fprintf(os.Stderr, "tsqllineage: script %d: %v\n", i, res.Err)
				continue
			}
			for _, d := range res.Diagnostics {
				fmt.Fprintf(os.Stderr, "tsqllineage: script %d: %s: %s\n", i, d.Kind, d.Message)
			}
			if err := printGraph(res.Graph, analyzeFormat); err != nil {
				fmt.Fprintf(os.Stderr, "tsqllineage: script %d: %v\n", i, err)
			}
		}
	},
}

// outputColumns names the columns of the synthetic "out" table (the
// top-level SELECT handler's projection target) as the compaction root, so
// `analyze --compact` keeps only what feeds a script's final output.
func outputColumns(g *lineage.Graph) []string {
	tid, ok := g.TableID("out")
	if !ok {
		return nil
	}
	tbl, ok := g.Table(tid)
	if !ok {
		return nil
	}
	return tbl.Columns
}

func printGraph(g *lineage.Graph, format string) error {
	var data []byte
	var err error
	switch format {
	case "yaml":
		data, err = serialize.MarshalYAML(g)
	default:
		data, err = serialize.MarshalJSON(g)
	}
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "directory (or afs URL) of serialized AST documents (required)")
	analyzeCmd.Flags().StringVar(&analyzeSuffix, "suffix", ".ast.json", "file name suffix to match under --input")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "output format: json or yaml")
	analyzeCmd.Flags().IntVar(&analyzeMaxConcurrent, "max-concurrent", 4, "max scripts analyzed concurrently")
	analyzeCmd.Flags().BoolVar(&analyzeCompact, "compact", false, "drop nodes unreachable from the synthetic output table")
	analyzeCmd.Flags().BoolVar(&analyzeCaseSensitive, "case-sensitive", false, "treat identifiers as case-sensitive")
	_ = analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
}
