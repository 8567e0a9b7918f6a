package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vroute/internal/store"
)

func historyCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect saved history stacks",
		Long: `Inspect and delete the history stacks saved in the SQLite
database named by history.path.`,
	}

	cmd.AddCommand(
		historyListCmd(flags),
		historyShowCmd(flags),
		historyClearCmd(flags),
	)

	return cmd
}

// openStore opens the configured history database.
func openStore(cmd *cobra.Command, flags *globalFlags) (*store.SQLite, *env, error) {
	e, err := loadEnv(flags, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, e.cfg.HistoryPath())
	if err != nil {
		return nil, nil, err
	}
	return st, e, nil
}

func historyListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved stacks, most recently saved first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer st.Close()

			keys, err := st.Keys(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(keys) == 0 {
				fmt.Fprintln(w, "No saved history.")
				return nil
			}
			for _, key := range keys {
				entries, index, _, err := st.Load(cmd.Context(), key)
				if err != nil {
					return err
				}
				at := "-"
				if index >= 0 && index < len(entries) {
					at = entries[index].String()
				}
				info(w, "%s\t%d entries, at %s", key, len(entries), at)
			}
			return nil
		},
	}
}

func historyShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show [key]",
		Short: "Print a saved stack (default: history.key)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, e, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer st.Close()

			key := e.cfg.History.Key
			if len(args) == 1 {
				key = args[0]
			}
			entries, index, ok, err := st.Load(cmd.Context(), key)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if !ok {
				warn(w, "No history saved under %q", key)
				return nil
			}
			for i, loc := range entries {
				marker := " "
				if i == index {
					marker = ">"
				}
				info(w, "%s %d %s", marker, i, loc)
			}
			return nil
		},
	}
}

func historyClearCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [key]",
		Short: "Delete a saved stack (default: history.key)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, e, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer st.Close()

			key := e.cfg.History.Key
			if len(args) == 1 {
				key = args[0]
			}
			if err := st.Delete(cmd.Context(), key); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Deleted history %q", key)
			return nil
		},
	}
}
