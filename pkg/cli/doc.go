/*
Package cli provides the output, error and signal helpers used by the
costkatana command.

Output Formatting:

Commands render results as text or JSON. Results that implement Tabular
are printed as aligned columns in text mode and as rows in CSV mode:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, estimate); err != nil {
	    return err
	}

Progress Reporting:

Bulk imports report progress on stderr when it is a terminal:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(int64(len(records)))
	for i, rec := range records {
	    // track rec
	    progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
