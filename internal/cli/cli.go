// Package cli builds the cobra command tree shared by both of the
// module's entrypoints (cmd/redolog-tool, the interactive/export front
// end, and cmd/innodb-parser, packaged under the original product's
// binary name). Keeping the tree in one place means the two commands
// never drift apart.
package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yamaru/redolog-scan/internal/browse"
	"github.com/yamaru/redolog-scan/internal/checkpoint"
	"github.com/yamaru/redolog-scan/internal/export"
	"github.com/yamaru/redolog-scan/internal/redorec"
	"github.com/yamaru/redolog-scan/internal/report"
	"github.com/yamaru/redolog-scan/internal/scan"
	"github.com/yamaru/redolog-scan/internal/sink"
)

type rootFlags struct {
	headerOnly bool
	withHeader bool
	startLSN   uint64
	stopLSN    uint64
	verbose    int
	exportFmt  string
	exportOut  string
}

// NewRootCmd builds the root command under use, stamped with version.
func NewRootCmd(use, version string) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:     use + " [file]",
		Short:   "Inspect an InnoDB-family redo log file",
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], flags)
		},
	}

	// The original's -h/-H short flags are reversed versus what their long
	// names suggest: -h prints the header and exits, -H prints the header
	// and continues scanning. Preserved faithfully (mysqlredo.cc:41-42).
	root.Flags().BoolVarP(&flags.headerOnly, "header-only", "h", false, "print the file header and exit")
	root.Flags().BoolVarP(&flags.withHeader, "header", "H", false, "print the file header, then continue scanning")
	root.Flags().Uint64VarP(&flags.startLSN, "start-lsn", "b", 0, "override the computed scan start LSN")
	root.Flags().Uint64VarP(&flags.stopLSN, "stop-lsn", "e", 0, "stop scanning once recovered_lsn exceeds this value")
	root.Flags().CountVarP(&flags.verbose, "verbose", "v", "increase diagnostic verbosity (may be repeated)")
	root.Flags().StringVar(&flags.exportFmt, "export", "", "export recovered records as json or csv instead of printing text events")
	root.Flags().StringVar(&flags.exportOut, "output", "", "export destination file (defaults to stdout)")

	root.AddCommand(newBrowseCmd())
	root.AddCommand(newVersionCmd(version))

	return root
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [file]",
		Short: "Interactively browse recovered mini-transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			hdr, err := checkpoint.ParseHeader(file)
			if err != nil {
				return err
			}
			ckptLSN, err := checkpoint.SelectCheckpointLSN(file)
			if err != nil {
				return err
			}
			offset := checkpoint.AlignDownBlock(checkpoint.Offset(ckptLSN, hdr.StartLSN))
			recs, err := scanToSlice(file[offset:], ckptLSN, 0)
			if err != nil {
				return err
			}
			return browse.Run(recs)
		},
	}
}

func newLogger(verbose int) *log.Logger {
	logger := log.New(os.Stderr)
	switch {
	case verbose >= 2:
		logger.SetLevel(log.DebugLevel)
	case verbose == 1:
		logger.SetLevel(log.InfoLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

func runScan(cmd *cobra.Command, path string, flags *rootFlags) error {
	logger := newLogger(flags.verbose)

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	hdr, err := checkpoint.ParseHeader(file)
	if err != nil {
		return err
	}
	ckptLSN, err := checkpoint.SelectCheckpointLSN(file)
	if err != nil {
		return err
	}

	if flags.headerOnly || flags.withHeader {
		fmt.Fprintf(cmd.OutOrStdout(), "start_lsn=%d checkpoint_lsn=%d\n", hdr.StartLSN, ckptLSN)
		if flags.headerOnly {
			return nil
		}
	}

	startLSN := ckptLSN
	if flags.startLSN != 0 {
		startLSN = flags.startLSN
	}
	offset := checkpoint.AlignDownBlock(checkpoint.Offset(startLSN, hdr.StartLSN))
	logger.Debugf("scanning from offset %d (start_lsn=%d)", offset, startLSN)

	if flags.exportFmt != "" {
		recs, err := scanToSlice(file[offset:], startLSN, flags.stopLSN)
		if err != nil {
			return err
		}
		out := os.Stdout
		if flags.exportOut != "" {
			f, err := os.Create(flags.exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		switch flags.exportFmt {
		case "json":
			return export.JSON(out, recs)
		case "csv":
			return export.CSV(out, recs)
		default:
			return fmt.Errorf("unsupported export format %q", flags.exportFmt)
		}
	}

	es := sink.NewTextSink(cmd.OutOrStdout())
	collector := report.NewCollector(es)
	sc := scan.New(scan.Options{CheckpointLSN: startLSN, StopLSN: flags.stopLSN, Logger: logger}, collector)
	sc.Run(file, int(offset))

	if flags.verbose > 0 {
		summary := collector.Summary()
		summary.FoundCorrupt = sc.FoundCorruptLog()
		summary.RecoveredLSN = sc.RecoveredLSN()
		report.WriteText(cmd.ErrOrStderr(), summary)
	}

	if sc.FoundCorruptLog() {
		return fmt.Errorf("corrupt log detected at recovered_lsn=%d", sc.RecoveredLSN())
	}
	return nil
}

// scanToSlice runs a scan collecting records into memory instead of
// streaming them to a text sink, for the export and browse subcommands.
func scanToSlice(file []byte, checkpointLSN, stopLSN uint64) ([]redorec.Record, error) {
	cs := &collectingSink{}
	sc := scan.New(scan.Options{CheckpointLSN: checkpointLSN, StopLSN: stopLSN}, cs)
	sc.Run(file, 0)
	if sc.FoundCorruptLog() {
		return cs.records, fmt.Errorf("corrupt log detected at recovered_lsn=%d", sc.RecoveredLSN())
	}
	return cs.records, nil
}

type collectingSink struct {
	records []redorec.Record
}

func (c *collectingSink) EmitMTRBoundary(kind sink.MTRKind, startLSN, endLSN uint64) {}

func (c *collectingSink) EmitRecord(rec redorec.Record) {
	c.records = append(c.records, rec)
}
