// Copyright © 2023 One Concern

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls [repo/dir]",
	Short: "List the committed entries under a repository directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := paramsToClient()
		if err != nil {
			wrapFatalln("configure client", err)
			return
		}
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		entries, err := client.ListEntries(context.Background(), dir)
		if err != nil {
			wrapFatalln("list entries", err)
			return
		}
		for _, entry := range entries {
			name := entry.Name
			if entry.IsDir {
				name += "/"
			}
			infoLogger.Println(name)
		}
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
