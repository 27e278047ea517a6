/*
Package cli provides the pieces shared by the seqval commands: report
formatters, a batch progress bar, signal handling and exit codes.

Output Formatting:

Validation reports render as text, JSON or CSV:

	format, err := cli.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, reports); err != nil {
		return err
	}

The CSV form has one row per finding with the columns listed in CSVHeaders.

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr).(*cli.SimpleProgress)
	progress.Start(len(paths))
	checker := check.NewChecker(manager, check.WithProgress(progress.Callback()))
	reports := checker.CheckFiles(ctx, paths)
	progress.Finish()

Exit Codes:

ExitCode maps a command's error to the process status: 0 when every
manifest passed, 1 when findings were reported (FindingsError) and 2 for
anything that prevented validation.
*/
package cli
