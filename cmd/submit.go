package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"game-catalog/pkg/models"
	"game-catalog/pkg/upload"
)

// newSubmitCmd creates a command that submits a game for moderation
func newSubmitCmd() *cobra.Command {
	var (
		d         upload.Draft
		gameType  string
		filePath  string
		platforms []string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a game for approval",
		Long: `Submit a game to the catalog. With --file the game is uploaded to the
backend's storage first; otherwise --url points at where it is hosted.`,
		Example: `  game-catalog submit --id cool-game --title "Cool Game" --type iframe --file ./index.html
  game-catalog submit --id cool-game --title "Cool Game" --type external --url https://example.itch.io/cool-game --platform Windows`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			d.Type = models.ParsePresentationType(gameType)
			if cmd.Flags().Changed("platform") {
				d.Platforms = platforms
			} else {
				d.Platforms = upload.ApplyPlatformDefaults(d.Type, nil)
			}
			if d.ID == "" {
				d.ID = upload.SuggestID(d.Title)
			}

			if filePath != "" {
				f, err := os.Open(filePath)
				if err != nil {
					return fmt.Errorf("open %s: %w", filePath, err)
				}
				defer f.Close()
				info, err := f.Stat()
				if err != nil {
					return fmt.Errorf("stat %s: %w", filePath, err)
				}
				preview, err := upload.CheckFile(info.Size())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Selected %s (%s)\n", filepath.Base(filePath), preview)
				d.File = &upload.File{Name: filepath.Base(filePath), Size: info.Size(), Reader: f}
				if d.Type == models.TypeDownload && d.FileSize == "" {
					d.FileSize = preview
				}
			}

			progress := &progressLine{out: cmd.OutOrStdout(), draft: d}
			workflow := upload.NewWorkflow(client, nil, nil)
			if _, err := workflow.Submit(cmd.Context(), d, progress.report); err != nil {
				progress.done()
				fmt.Fprintln(cmd.ErrOrStderr(), upload.UserMessage(err))
				return err
			}
			progress.done()
			fmt.Fprintln(cmd.OutOrStdout(), upload.SuccessMessage)
			return nil
		},
	}

	cmd.Flags().StringVar(&d.ID, "id", "", "Game id (lowercase letters, digits and dashes; derived from the title when empty)")
	cmd.Flags().StringVar(&d.Title, "title", "", "Game title")
	cmd.Flags().StringVar(&d.Category, "category", "", "Category")
	cmd.Flags().StringVar(&d.DeveloperName, "developer", "", "Developer name")
	cmd.Flags().StringVar(&d.Thumbnail, "thumbnail", "", "Thumbnail image URL")
	cmd.Flags().StringVar(&d.AspectRatio, "aspect-ratio", "", "Aspect ratio for embedded games, e.g. 16/9")
	cmd.Flags().StringVar(&gameType, "type", "iframe", "Presentation type: iframe, download or external")
	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "Supported platforms (repeatable)")
	cmd.Flags().StringVar(&d.PlayURL, "url", "", "Play, download or external page URL")
	cmd.Flags().StringVar(&d.FileSize, "file-size", "", "Displayed file size for downloads")
	cmd.Flags().StringVar(&filePath, "file", "", "Local file to upload")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// progressLine prints the submission stages, overwriting the upload
// percentage in place
type progressLine struct {
	out       io.Writer
	draft     upload.Draft
	uploading bool
}

func (p *progressLine) report(stage upload.Stage, percent int) {
	switch stage {
	case upload.StageUploading:
		p.uploading = true
		f := p.draft.File
		sent := f.Size * int64(percent) / 100
		fmt.Fprintf(p.out, "\r    Uploading %s: %d%% (%s/%s)...", f.Name, percent, formatSize(sent), formatSize(f.Size))
	case upload.StageSubmitting:
		p.done()
		fmt.Fprintln(p.out, "Submitting game data...")
	}
}

// done ends an in-place upload line
func (p *progressLine) done() {
	if p.uploading {
		fmt.Fprintln(p.out)
		p.uploading = false
	}
}

// formatSize converts bytes to a human-readable format
func formatSize(bytes int64) string {
	const (
		B  int64 = 1
		KB       = B * 1024
		MB       = KB * 1024
		GB       = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
