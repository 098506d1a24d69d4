package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"game-catalog/pkg/admin"
	"game-catalog/pkg/services"
	"game-catalog/pkg/upload"
)

// newAdminCmd groups the moderation commands
func newAdminCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderate submissions and stored files",
		Long: `Moderation commands. A login lasts two hours and is kept in STATE_FILE.
When no session is active ADMIN_KEY is used to start one.`,
	}
	cmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every confirmation")

	run := func(action string, args func([]string) admin.Request, nargs int, show func(io.Writer, *admin.Result)) *cobra.Command {
		return &cobra.Command{
			Args: cobra.ExactArgs(nargs),
			RunE: func(cmd *cobra.Command, argv []string) error {
				d, err := newDashboard(cmd, assumeYes)
				if err != nil {
					return err
				}
				req := admin.Request{Action: action}
				if args != nil {
					req = args(argv)
					req.Action = action
				}
				res, err := d.Dispatch(cmd.Context(), req)
				if err != nil {
					if msg := admin.UserMessage(err); msg != "" {
						fmt.Fprintln(cmd.ErrOrStderr(), msg)
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
				if res.Message != "" {
					fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				}
				if show != nil {
					show(cmd.OutOrStdout(), res)
				}
				return nil
			},
		}
	}
	byID := func(argv []string) admin.Request { return admin.Request{ID: argv[0]} }

	pending := run("refresh-pending", nil, 0, printPending)
	pending.Use, pending.Short = "pending", "List games waiting for approval"

	approve := run("approve", byID, 1, nil)
	approve.Use, approve.Short = "approve [id]", "Publish a pending game"

	reject := run("reject", byID, 1, nil)
	reject.Use, reject.Short = "reject [id]", "Delete a pending game and all of its files"

	storageCmd := run("refresh-storage", nil, 0, printStorage)
	storageCmd.Use, storageCmd.Short = "storage", "Show the storage overview"

	files := run("view-files", byID, 1, printFiles)
	files.Use, files.Short = "files [id]", "List the stored files of a game"

	deleteFile := run("delete-file", func(argv []string) admin.Request {
		return admin.Request{ID: argv[0], Filename: argv[1]}
	}, 2, nil)
	deleteFile.Use, deleteFile.Short = "delete-file [id] [filename]", "Delete one stored file"

	deleteAll := run("delete-all-files", byID, 1, nil)
	deleteAll.Use, deleteAll.Short = "delete-all-files [id]", "Delete every stored file of a game"

	cmd.AddCommand(
		newAdminLoginCmd(),
		newAdminLogoutCmd(),
		pending, approve, reject, storageCmd, files, deleteFile, deleteAll,
		newAdminOrphansCmd(&assumeYes),
	)
	return cmd
}

// newDashboard builds a dashboard over the CLI state file, starting a
// session from ADMIN_KEY when none is active
func newDashboard(cmd *cobra.Command, assumeYes bool) (*admin.Dashboard, error) {
	cfg, client, err := setup()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	session := admin.NewSession(stateStore(cfg), nil)
	if !session.LoggedIn() && cfg.AdminKey != "" {
		if _, err := session.Login(cfg.AdminKey); err != nil {
			return nil, err
		}
	}

	var confirm admin.Confirmer = admin.AlwaysConfirm
	if !assumeYes {
		confirm = stdinConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	return admin.NewDashboard(session, admin.BackendConnect(client), confirm, services.Default(), slog.Default()), nil
}

// stdinConfirmer asks on out and accepts y or yes from in
func stdinConfirmer(in io.Reader, out io.Writer) admin.Confirmer {
	reader := bufio.NewReader(in)
	return admin.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	})
}

func newAdminLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [key]",
		Short: "Start a moderator session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := setup()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			key := cfg.AdminKey
			if len(args) > 0 {
				key = args[0]
			}
			if key == "" {
				return errors.New("no admin key given")
			}

			d := admin.NewDashboard(admin.NewSession(stateStore(cfg), nil), admin.BackendConnect(client), nil, nil, slog.Default())
			res, err := d.Dispatch(cmd.Context(), admin.Request{Action: "login", Key: key})
			if err != nil || res.LoggedOut {
				fmt.Fprintln(cmd.ErrOrStderr(), admin.UserMessage(admin.ErrLoggedOut))
				if err == nil {
					err = admin.ErrLoggedOut
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Logged in. The session lasts 2 hours.")
			printPending(out, res)
			printStorage(out, res)
			return nil
		},
	}
}

func newAdminLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the moderator session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := admin.NewSession(stateStore(cfg), nil).Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newAdminOrphansCmd(assumeYes *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List stored files that belong to no published or pending game",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDashboard(cmd, *assumeYes)
			if err != nil {
				return err
			}
			orphans, err := d.Orphans(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), admin.UserMessage(err))
				return err
			}
			out := cmd.OutOrStdout()
			if len(orphans) == 0 {
				fmt.Fprintln(out, "No orphaned files.")
				return nil
			}
			for _, o := range orphans {
				fmt.Fprintf(out, "%s\n  Files: %d | Size: %s\n", o.ID, o.FileCount, upload.FormatMB(o.TotalSize))
			}
			fmt.Fprintf(out, "\nTotal: %d games. Remove them with delete-all-files.\n", len(orphans))
			return nil
		},
	}
}

func printPending(out io.Writer, res *admin.Result) {
	fmt.Fprintln(out, "Pending Approval:")
	fmt.Fprintln(out, "=================")
	if res.PendingErr != nil {
		fmt.Fprintln(out, admin.UserMessage(res.PendingErr))
		return
	}
	if len(res.Pending) == 0 {
		fmt.Fprintln(out, "No games pending approval.")
		fmt.Fprintln(out)
		return
	}
	for _, g := range res.Pending {
		dev := g.Developer.Name
		if dev == "" {
			dev = "Unknown"
		}
		fmt.Fprintf(out, "%s\n  ID: %s\n  By: %s\n", g.Title.Localize(), g.ID, dev)
	}
	fmt.Fprintln(out)
}

func printStorage(out io.Writer, res *admin.Result) {
	fmt.Fprintln(out, "Storage:")
	fmt.Fprintln(out, "========")
	if res.StorageErr != nil {
		fmt.Fprintln(out, admin.UserMessage(res.StorageErr))
		return
	}
	if res.Storage == nil {
		return
	}
	fmt.Fprintf(out, "Total files: %d\nTotal size: %s\n", res.Storage.TotalFiles, upload.FormatMB(res.Storage.TotalSize))
	if len(res.Storage.Games) == 0 {
		fmt.Fprintln(out, "No files stored.")
		return
	}
	for _, id := range slices.Sorted(maps.Keys(res.Storage.Games)) {
		stats := res.Storage.Games[id]
		fmt.Fprintf(out, "%s\n  Files: %d | Size: %s\n", id, stats.FileCount, upload.FormatMB(stats.TotalSize))
	}
}

func printFiles(out io.Writer, res *admin.Result) {
	if res.Files == nil {
		return
	}
	fmt.Fprintf(out, "Files for %s:\n", res.FilesFor)
	if len(res.Files.Files) == 0 {
		fmt.Fprintln(out, "No files found for this game.")
		return
	}
	for _, f := range res.Files.Files {
		fmt.Fprintf(out, "%s  %.2f KB  %s\n", f.Name(), float64(f.Size)/1024, f.URL)
	}
}
