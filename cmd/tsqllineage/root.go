package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tsqllineage",
	Short: "Column-level lineage extraction for T-SQL",
	Long:  `tsqllineage reads a batch of serialized T-SQL ASTs and extracts a column-level lineage graph: which columns feed which, through SELECT, JOIN, CTE, INSERT, stored procedures, and the rest of the constructs named in the lineage core.`,
}

// version is set at build time via -ldflags; "dev" otherwise.
var version = "dev"

func execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func main() {
	execute()
}
