// Copyright © 2023 One Concern

package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/oneconcern/datasync/pkg/model"
)

var pollCmd = &cobra.Command{
	Use:   "poll repo/path...",
	Short: "Check whether repository paths changed since a reference instant",
	Long: `Check whether every named path was modified strictly after --since.

Without --timeout, the query is evaluated exactly once and the exit code tells
the outcome: 0 when satisfied, 2 when not yet. With --timeout, poll blocks and
re-evaluates until the query is satisfied or the deadline passes.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := paramsToClient()
		if err != nil {
			wrapFatalln("configure client", err)
			return
		}

		var since time.Time
		if datasyncFlags.poll.Since != "" {
			since, err = time.Parse(time.RFC3339, datasyncFlags.poll.Since)
			if err != nil {
				wrapFatalln("parse --since", err)
				return
			}
		}
		query := model.ChangeQuery{Paths: args, Since: since}

		if datasyncFlags.poll.Timeout > 0 {
			err = client.WaitForChange(context.Background(), query,
				datasyncFlags.poll.Timeout, datasyncFlags.poll.Backoff)
			if err != nil {
				wrapFatalln("wait for change", err)
				return
			}
			infoLogger.Println("satisfied")
			return
		}

		satisfied, err := client.Poll(context.Background(), query)
		if err != nil {
			wrapFatalln("poll", err)
			return
		}
		if !satisfied {
			wrapFatalWithCodef(2, "not yet: some paths unchanged since %s",
				since.Format(time.RFC3339))
			return
		}
		infoLogger.Println("satisfied")
	},
}

func init() {
	addSinceFlag(pollCmd)
	addTimeoutFlag(pollCmd)
	addBackoffFlag(pollCmd)

	rootCmd.AddCommand(pollCmd)
}
