package cmd

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"
)

var outputFile string

// downloadCmd streams an attachment to disk
var downloadCmd = &cobra.Command{
	Use:   "download <content-url>",
	Short: "Download an attachment by its content URL",
	Long: `Download a ticket or resolution attachment. The content URL is the
content_url shown for the attachment; use -o - to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default is the last path element)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	contentURL := args[0]

	body, err := client.Stream(cmd.Context(), contentURL)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", contentURL, err)
	}
	defer body.Close()

	target := outputFile
	if target == "" {
		target = path.Base(contentURL)
	}

	var out io.Writer = os.Stdout
	if target != "-" {
		f, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", target, err)
		}
		defer f.Close()
		out = f
	}

	n, err := io.Copy(out, body)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	logger.Info().Str("file", target).Int64("bytes", n).Msg("Download complete")
	return nil
}
