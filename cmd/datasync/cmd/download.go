// Copyright © 2023 One Concern

package cmd

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oneconcern/datasync/pkg/core"
	"github.com/oneconcern/datasync/pkg/model"
)

var downloadCmd = &cobra.Command{
	Use:   "download repo/path[=local]...",
	Short: "Fetch files from the shared repository",
	Long: `Fetch files from the shared repository into a local directory.

Each argument names a repository path, optionally mapped to a local output file
with repo/path=local. Unmapped files keep their repository layout under
--destination. Only the requested files are materialized, whatever the size of
the repository.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := paramsToClient()
		if err != nil {
			wrapFatalln("configure client", err)
			return
		}

		sinks := make([]model.DownloadSink, 0, len(args))
		for _, arg := range args {
			repoPath, local, mapped := strings.Cut(arg, "=")
			if !mapped {
				local = filepath.Join(datasyncFlags.download.DestDir, filepath.FromSlash(repoPath))
			}
			sinks = append(sinks, model.FileSink{Path: repoPath, DestPath: local})
		}

		var opts []core.DownloadOption
		if datasyncFlags.download.AllowMissing {
			opts = append(opts, core.WithEmptyFallback())
		}

		result, err := client.Download(context.Background(), sinks, opts...)
		if err != nil {
			wrapFatalln("download", err)
			return
		}
		infoLogger.Printf("downloaded %d files (%v)", len(result.Files), result.Duration)
	},
}

func init() {
	addDestDirFlag(downloadCmd)
	addAllowMissingFlag(downloadCmd)

	rootCmd.AddCommand(downloadCmd)
}
