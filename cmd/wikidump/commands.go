package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yourusername/wikidump-go/internal/app"
	"github.com/yourusername/wikidump-go/internal/domain"
	"github.com/yourusername/wikidump-go/internal/infrastructure"
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the URL of the latest dump run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		runURL, err := a.svc.LatestRun(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), runURL)
		return nil
	},
}

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Find the archive of the selected dump in the latest run without downloading it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		loc, err := a.svc.Locate(cmd.Context(), a.config.Dump.Descriptor())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Dump:    %s\n", loc.Descriptor)
		fmt.Fprintf(out, "Run:     %s\n", loc.RunURL)
		fmt.Fprintf(out, "Outcome: %s\n", loc.Outcome.Kind)
		for _, name := range loc.Outcome.Names {
			fmt.Fprintf(out, "  %s%s\n", loc.RunURL, name)
		}
		return loc.Outcome.Err(loc.RunURL)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the selected dump unless it is already present",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		packed, err := a.svc.Fetch(cmd.Context(), a.config.Dump.Descriptor())
		if err != nil {
			return err
		}
		printPacked(cmd, packed)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract [archive]",
	Short: "Stream the records of a dump archive to stdout",
	Long: `Streams the records of a dump archive to stdout, one JSON document per line.
Without an archive argument the selected dump is fetched first.
With --bytes, member names and sizes are listed instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		limit, _ := cmd.Flags().GetInt("limit")

		var packed *domain.PackedDump
		if len(args) == 1 {
			packed = &domain.PackedDump{
				Descriptor: a.config.Dump.Descriptor(),
				Path:       args[0],
				FileName:   filepath.Base(args[0]),
				Source:     domain.SourceLocal,
			}
		} else {
			packed, err = a.svc.Fetch(cmd.Context(), a.config.Dump.Descriptor())
			if err != nil {
				return err
			}
		}

		out := bufio.NewWriterSize(cmd.OutOrStdout(), 1<<16)
		defer out.Flush()

		count := 0
		if domain.ExtractMode(a.config.Extract.Mode) == domain.ModeBytes {
			return a.svc.EachMember(packed, func(m *infrastructure.Member) error {
				fmt.Fprintf(out, "%s\t%s\n", m.Name, humanize.IBytes(uint64(m.Size)))
				count++
				if limit > 0 && count >= limit {
					return app.ErrStop
				}
				return nil
			})
		}

		return a.svc.EachLine(packed, func(member, line string) error {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
			count++
			if limit > 0 && count >= limit {
				return app.ErrStop
			}
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <archive>",
	Short: "Delete a downloaded dump archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		packed := &domain.PackedDump{Path: args[0], FileName: filepath.Base(args[0])}
		if err := a.svc.Delete(packed); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List catalogued dump resolutions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		filters := make(map[string]interface{})
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			if !domain.ValidateStatus(domain.RecordStatus(status)) {
				return fmt.Errorf("invalid status: %s", status)
			}
			filters["status"] = status
		}

		records, err := a.svc.History(filters)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDUMP\tSTATUS\tSOURCE\tSIZE\tFILE\tCREATED")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				truncate(r.ID, 8),
				r.Descriptor(),
				r.Status,
				r.Source,
				humanize.IBytes(uint64(r.SizeBytes)),
				truncate(r.FileName, 60),
				humanize.Time(r.CreatedAt))
		}
		return w.Flush()
	},
}

func init() {
	extractCmd.Flags().Bool("bytes", false, "Read whole members instead of lines")
	extractCmd.Flags().Int("limit", 0, "Stop after N lines (or N members with --bytes); 0 means no limit")
	historyCmd.Flags().StringP("status", "s", "", "Filter by status")
}

func printPacked(cmd *cobra.Command, packed *domain.PackedDump) {
	size := "unknown"
	if info, err := os.Stat(packed.Path); err == nil {
		size = humanize.IBytes(uint64(info.Size()))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Path:   %s\n", packed.Path)
	fmt.Fprintf(out, "Source: %s\n", packed.Source)
	fmt.Fprintf(out, "Size:   %s\n", size)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
