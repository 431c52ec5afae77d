package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var statsFile string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print node/edge counts of a serialized lineage document",
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := loadDocument(statsFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		counts := doc.Statistics()
		kinds := make([]string, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("%-10s %d\n", k, counts[k])
		}
		if doc.Incomplete {
			fmt.Println("incomplete: true")
		}
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsFile, "file", "", "serialized lineage document (.json or .yaml)")
	_ = statsCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(statsCmd)
}
