// Copyright © 2023 One Concern

package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get repo/path",
	Short: "Print the content of one repository file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := paramsToClient()
		if err != nil {
			wrapFatalln("configure client", err)
			return
		}
		data, err := client.Get(context.Background(), args[0])
		if err != nil {
			wrapFatalln("get", err)
			return
		}
		_, _ = os.Stdout.Write(data)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
