// Copyright © 2023 One Concern

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/oneconcern/datasync/pkg/core"
	"github.com/oneconcern/datasync/pkg/model"
)

// batchSpec is the YAML format accepted by --files
type batchSpec struct {
	Files []batchEntry `json:"files" yaml:"files"`
}

// batchEntry names one file to publish. Exactly one of File, Data or
// Connection+Key selects where the content comes from.
type batchEntry struct {
	Path       string `json:"path" yaml:"path"`
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	Data       string `json:"data,omitempty" yaml:"data,omitempty"`
	Connection string `json:"connection,omitempty" yaml:"connection,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
}

func (e batchEntry) toSource() (model.UploadSource, error) {
	switch {
	case e.File != "" && e.Data == "" && e.Connection == "":
		return model.FileSource{Path: e.Path, SourcePath: e.File}, nil
	case e.Data != "" && e.File == "" && e.Connection == "":
		return model.LiteralSource{Path: e.Path, Data: []byte(e.Data)}, nil
	case e.Connection != "" && e.File == "" && e.Data == "":
		if e.Key == "" {
			return nil, fmt.Errorf("entry %q: a connection needs a key", e.Path)
		}
		return model.ObjectSource{Path: e.Path, Connection: e.Connection, Key: e.Key}, nil
	default:
		return nil, fmt.Errorf("entry %q: exactly one of file, data or connection must be set", e.Path)
	}
}

func specToBatch(specFile string, args []string) (model.PublishBatch, error) {
	var sources []model.UploadSource
	if specFile != "" {
		b, err := os.ReadFile(specFile)
		if err != nil {
			return model.PublishBatch{}, fmt.Errorf("read batch spec: %w", err)
		}
		var spec batchSpec
		if err = yaml.Unmarshal(b, &spec); err != nil {
			return model.PublishBatch{}, fmt.Errorf("parse batch spec: %w", err)
		}
		for _, entry := range spec.Files {
			src, err := entry.toSource()
			if err != nil {
				return model.PublishBatch{}, err
			}
			sources = append(sources, src)
		}
	}
	// positional args: local files published under their own names,
	// or an explicit mapping local=repo/path
	for _, arg := range args {
		local, target, mapped := strings.Cut(arg, "=")
		if !mapped {
			target = local
		}
		sources = append(sources, model.FileSource{Path: target, SourcePath: local})
	}
	return model.StaticBatch(sources...), nil
}

var updateCmd = &cobra.Command{
	Use:   "update [file[=repo/path]]...",
	Short: "Publish files into the shared repository as one commit",
	Long: `Publish files into the shared repository as one atomic commit.

Files are named either as positional arguments (local paths, optionally mapped
to a repository path with local=repo/path), or through a YAML batch spec:

  files:
    - path: data/report.csv
      file: /tmp/report.csv
    - path: conf/threshold.txt
      data: "0.75"
    - path: models/model.bin
      connection: gcs://ml-artifacts
      key: runs/42/model.bin

When a concurrent publisher wins the push race, the publish is replayed on top
of the new repository state until it lands or the attempt budget runs out.`,
	Run: func(cmd *cobra.Command, args []string) {
		client, err := paramsToClient()
		if err != nil {
			wrapFatalln("configure client", err)
			return
		}
		batch, err := specToBatch(datasyncFlags.update.SpecFile, args)
		if err != nil {
			wrapFatalln("assemble batch", err)
			return
		}

		var opts []core.UpdateOption
		if datasyncFlags.update.Message != "" {
			opts = append(opts, core.WithCommitMessage(datasyncFlags.update.Message))
		}
		if datasyncFlags.update.MessageExtra != "" {
			opts = append(opts, core.WithCommitMessageExtra(datasyncFlags.update.MessageExtra))
		}

		result, err := client.Update(context.Background(), batch, opts...)
		if err != nil {
			wrapFatalln("publish", err)
			return
		}
		if result.NoOp {
			infoLogger.Printf("nothing to publish: content unchanged (%d files, %v)",
				len(result.FilesRequested), result.Duration)
			return
		}
		infoLogger.Printf("published %d files as %s (%v)",
			len(result.FilesUpdated), result.CommitRef, result.Duration)
	},
}

func init() {
	addBatchSpecFlag(updateCmd)
	addCommitMessageFlag(updateCmd)
	addCommitMessageExtraFlag(updateCmd)
	addCommitTagFlag(updateCmd)
	addMaxFileSizeFlag(updateCmd)
	addPushAttemptsFlag(updateCmd)

	rootCmd.AddCommand(updateCmd)
}
