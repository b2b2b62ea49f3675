// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/config"
	"github.com/pdiddy/research-digest/internal/memory"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect or reset the seen-paper memory",
	Long: `Memory records the IDs of papers included in earlier digests so later
digests skip them. Clearing it lets previously seen papers appear again.`,
}

func openMemory() *memory.Memory {
	return memory.Open(config.LoadPaths(viper.GetViper()).MemoryPath)
}

var memoryCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of remembered papers",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(openMemory().Count())
	},
}

var memoryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every remembered paper",
	RunE: func(cmd *cobra.Command, args []string) error {
		m := openMemory()
		n := m.Count()
		if err := m.Clear(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Cleared %d papers from %s\n", n, m.Path())
		return nil
	},
}

func init() {
	memoryCmd.AddCommand(memoryCountCmd, memoryClearCmd)
	rootCmd.AddCommand(memoryCmd)
}
