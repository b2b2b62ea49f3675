// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-digest/internal/config"
	"github.com/pdiddy/research-digest/internal/storage"
)

var digestsCmd = &cobra.Command{
	Use:   "digests",
	Short: "List, show, and delete stored digests",
}

func digestStore() *storage.Store {
	return storage.New(config.LoadPaths(viper.GetViper()).StorageDir)
}

var digestsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored digest dates, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		dates, err := digestStore().List(limit)
		if err != nil {
			return err
		}
		if len(dates) == 0 {
			fmt.Fprintln(os.Stderr, "No digests stored.")
			return nil
		}
		for _, d := range dates {
			fmt.Println(d)
		}
		return nil
	},
}

var digestsShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Print a stored digest (default: the latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := ""
		if len(args) == 1 {
			date = args[0]
		}
		d, err := digestStore().Load(date)
		if err != nil {
			return err
		}
		if d == nil {
			if date == "" {
				return fmt.Errorf("no digests stored")
			}
			return fmt.Errorf("no digest for %s", date)
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(d)
		case "table":
			printDigest(os.Stdout, d)
			return nil
		default:
			return fmt.Errorf("unknown format %q (use table, json, or yaml)", format)
		}
	},
}

var digestsDeleteCmd = &cobra.Command{
	Use:   "delete <date>",
	Short: "Delete the digest stored for date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := digestStore().Delete(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no digest for %s", args[0])
		}
		fmt.Fprintf(os.Stderr, "Deleted digest %s\n", args[0])
		return nil
	},
}

func init() {
	digestsListCmd.Flags().Int("limit", storage.DefaultListLimit, "maximum dates to list")
	digestsShowCmd.Flags().String("format", "table", "output format: table, json, or yaml")

	digestsCmd.AddCommand(digestsListCmd, digestsShowCmd, digestsDeleteCmd)
	rootCmd.AddCommand(digestsCmd)
}
