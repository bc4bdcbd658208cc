package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"stitcher/internal/artifact"
	"stitcher/internal/config"
)

func newArtifactsCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts",
		Short: "List stored audio artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			store, err := artifact.Open(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No stored artifacts.")
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(out)
			tw.AppendHeader(table.Row{"User", "Created", "Size", "Path"})
			for _, rec := range records {
				tw.AppendRow(table.Row{
					rec.UserID,
					rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					formatBytes(rec.ByteSize),
					rec.Path,
				})
			}
			if isatty.IsTerminal(os.Stdout.Fd()) {
				tw.SetStyle(table.StyleRounded)
			} else {
				style := table.StyleLight
				style.Color = table.ColorOptions{}
				tw.SetStyle(style)
			}
			tw.Style().Format.Header = text.FormatUpper
			tw.Render()
			return nil
		},
	}
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
