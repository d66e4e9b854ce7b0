package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfworkbench/internal/download"
	"github.com/Lllllllleong/pdfworkbench/internal/intake"
	"github.com/Lllllllleong/pdfworkbench/internal/models"
	"github.com/Lllllllleong/pdfworkbench/internal/services"
)

var splitCmd = &cobra.Command{
	Use:   "split [file]",
	Short: "Split a PDF into pages or page ranges",
	Long: `Split writes every page of the document to its own file, or, with
--ranges, one file per range. Ranges are comma separated page numbers and
"a-b" runs, e.g. "1-3, 5, 7-9". Ranges outside the document are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().String("ranges", "", `page ranges, e.g. "1-3, 5, 7-9" (default: one file per page)`)

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	files, err := gather(cmd, args, intake.PDFPolicy("split", cfg.PDFMaxBytes))
	if err != nil {
		return err
	}

	req := services.SplitRequest{File: files[0], Mode: models.SplitIndividual}
	if cmd.Flags().Changed("ranges") {
		req.Mode = models.SplitRanges
		req.Ranges, _ = cmd.Flags().GetString("ranges")
	}

	res, err := newWorkbench().Split(cmd.Context(), req)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, o := range res.Failed() {
		fmt.Fprintf(out, "failed:  pages %s: %s\n", o.Range, models.Notification(o.Err))
	}
	fmt.Fprintf(out, "split %s into %d files\n", res.Source, len(res.Succeeded()))

	if err := deliver(cmd.Context(), cmd, download.FromSplit(res)); err != nil {
		return err
	}
	if n := len(res.Failed()); n > 0 {
		return models.NewOpError(models.ErrOperationFailed, "split", res.Source,
			fmt.Sprintf("%d of %d outputs could not be created", n, len(res.Outputs)), nil)
	}
	return nil
}
