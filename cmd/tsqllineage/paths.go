package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	pathsFile     string
	pathsFrom     string
	pathsTo       string
	pathsMaxDepth int
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Enumerate lineage paths between two node IDs in a serialized document",
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := loadDocument(pathsFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		results := doc.Paths(pathsFrom, pathsTo, pathsMaxDepth)
		if len(results) == 0 {
			fmt.Println("no path found")
			return
		}
		for _, p := range results {
			fmt.Println(strings.Join(p, " -> "))
		}
	},
}

func init() {
	pathsCmd.Flags().StringVar(&pathsFile, "file", "", "serialized lineage document (.json or .yaml)")
	pathsCmd.Flags().StringVar(&pathsFrom, "from", "", "source node ID")
	pathsCmd.Flags().StringVar(&pathsTo, "to", "", "target node ID")
	pathsCmd.Flags().IntVar(&pathsMaxDepth, "max-depth", 20, "maximum path length to explore")
	_ = pathsCmd.MarkFlagRequired("file")
	_ = pathsCmd.MarkFlagRequired("from")
	_ = pathsCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(pathsCmd)
}
