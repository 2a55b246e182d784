// Copyright 2023 iamkroot. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "cffdump",
		Short: "cffdump is a CFF columnar file dumper",
		Long: `A tool to inspect CFF columnar files: print the trailer metadata
or run filtered scans from the command line.`,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log scan diagnostics")

	metaCmd := &cobra.Command{
		Use:   "meta <file.cff>",
		Short: "Pretty-print the JSON trailer metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpMeta(args[0])
		},
	}

	scanCmd := &cobra.Command{
		Use:   "scan <file.cff>",
		Short: "Scan the table, applying filters and limits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return scanTable(args[0])
		},
	}
	scanCmd.Flags().StringSliceVarP(&scanColumns, "columns", "c", nil,
		"columns to project (default: all, sorted by name)")
	scanCmd.Flags().StringArrayVarP(&scanFilters, "where", "w", nil,
		`filter of the form "field op value"; repeatable, filters are ANDed`)
	scanCmd.Flags().Int64VarP(&scanLimit, "limit", "n", -1,
		"emit at most this many rows")
	scanCmd.Flags().Int64VarP(&scanOffset, "offset", "o", 0,
		"skip this many matching rows first")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cffdump version %s\n", version)
		},
	}

	rootCmd.AddCommand(metaCmd, scanCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
