/*
Package cli provides command-line helpers used by the metta command.

Output Formatting:

Evaluation results and snapshot listings are printed as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatResults(os.Stdout, results); err != nil {
		return err
	}

The text format prints one line per evaluation, listing its results in
brackets:

	[42]
	[red, green]

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
