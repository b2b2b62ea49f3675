// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/config"
	"github.com/pdiddy/research-digest/internal/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset the sent-digest markers",
	Long: `State holds the IDs of digests already emailed. Clearing it allows send to
deliver the current window again.`,
}

// openLister opens the configured backend and checks that it can enumerate
// its markers.
func openLister() (state.Lister, func(), error) {
	b, err := state.Open(config.LoadState(viper.GetViper()))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { state.Close(b) }
	l, ok := b.(state.Lister)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("%w: %T cannot list markers", state.ErrNotImplemented, b)
	}
	return l, closeFn, nil
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print sent digest IDs, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, closeFn, err := openLister()
		if err != nil {
			return err
		}
		defer closeFn()

		ids, err := l.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every sent marker",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, closeFn, err := openLister()
		if err != nil {
			return err
		}
		defer closeFn()

		if err := l.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Sent markers cleared.")
		return nil
	},
}

func init() {
	stateCmd.AddCommand(stateListCmd, stateClearCmd)
	rootCmd.AddCommand(stateCmd)
}
