package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List active pages, most recently edited first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := credential()
		if err != nil {
			return err
		}
		pages, err := api.ListPages(cmd.Context(), cred)
		if err != nil {
			return fmt.Errorf("list pages: %w", err)
		}
		printPages(cmd.OutOrStdout(), pages)
		return nil
	},
}

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a page and print its id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := credential()
		if err != nil {
			return err
		}
		s, err := api.CreatePage(cmd.Context(), cred, args[0])
		if err != nil {
			return fmt.Errorf("create page: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), s.ID)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := credential()
		if err != nil {
			return err
		}
		p, err := api.GetPage(cmd.Context(), cred, args[0])
		if err != nil {
			return fmt.Errorf("get page %s: %w", args[0], err)
		}
		printPage(cmd.OutOrStdout(), p)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Move a page to the trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := credential()
		if err != nil {
			return err
		}
		if err := api.TrashPage(cmd.Context(), cred, args[0]); err != nil {
			return fmt.Errorf("trash page %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "moved %s to trash\n", args[0])
		return nil
	},
}

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "List trashed pages, most recently trashed first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := credential()
		if err != nil {
			return err
		}
		pages, err := api.ListTrash(cmd.Context(), cred)
		if err != nil {
			return fmt.Errorf("list trash: %w", err)
		}
		printTrash(cmd.OutOrStdout(), pages)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Move a page out of the trash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := credential()
		if err != nil {
			return err
		}
		if err := api.RestorePage(cmd.Context(), cred, args[0]); err != nil {
			return fmt.Errorf("restore page %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", args[0])
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge <id>",
	Short: "Permanently delete a trashed page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cred, err := credential()
		if err != nil {
			return err
		}
		if err := api.PurgePage(cmd.Context(), cred, args[0]); err != nil {
			return fmt.Errorf("purge page %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %s\n", args[0])
		return nil
	},
}
