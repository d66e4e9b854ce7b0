package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfworkbench/internal/collection"
	"github.com/Lllllllleong/pdfworkbench/internal/download"
	"github.com/Lllllllleong/pdfworkbench/internal/intake"
	"github.com/Lllllllleong/pdfworkbench/internal/models"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge PDF files into one document",
	Long: `Merge concatenates the given PDF files, in argument order, into
merged.pdf. The order can be adjusted before merging with --move FROM:TO
(1-based positions, applied left to right) and files dropped with --remove N.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringArray("move", nil, "move the file at position FROM to position TO, e.g. 3:1")
	mergeCmd.Flags().IntSlice("remove", nil, "drop the file at this 1-based position")

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	files, err := gather(cmd, args, intake.PDFPolicy("merge", cfg.PDFMaxBytes))
	if err != nil {
		return err
	}

	c := collection.New()
	c.Append(files...)
	removals, _ := cmd.Flags().GetIntSlice("remove")
	if err := applyRemovals(c, removals); err != nil {
		return err
	}
	moves, _ := cmd.Flags().GetStringArray("move")
	for _, m := range moves {
		if err := applyMove(c, m); err != nil {
			return err
		}
	}

	res, err := newWorkbench().Merge(cmd.Context(), c)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "merged %d files, %d pages: %s\n",
		len(res.Inputs), res.PageCount, strings.Join(res.Inputs, ", "))
	return deliver(cmd.Context(), cmd, download.FromMerge(res))
}

// applyRemovals drops files by their original positions.
func applyRemovals(c *collection.Collection, positions []int) error {
	ids := c.IDs()
	for _, p := range positions {
		if p < 1 || p > len(ids) {
			return models.NewOpError(models.ErrInvalidParameter, "merge", "",
				fmt.Sprintf("--remove %d is out of range (1-%d)", p, len(ids)), nil)
		}
		c.RemoveByID(ids[p-1])
	}
	return nil
}

func applyMove(c *collection.Collection, arg string) error {
	from, to, ok := strings.Cut(arg, ":")
	f, ferr := strconv.Atoi(strings.TrimSpace(from))
	t, terr := strconv.Atoi(strings.TrimSpace(to))
	if !ok || ferr != nil || terr != nil {
		return models.NewOpError(models.ErrInvalidParameter, "merge", "",
			fmt.Sprintf("--move %q must look like FROM:TO", arg), nil)
	}
	if n := c.Len(); f < 1 || f > n || t < 1 || t > n {
		return models.NewOpError(models.ErrInvalidParameter, "merge", "",
			fmt.Sprintf("--move %q is out of range (1-%d)", arg, n), nil)
	}
	c.Move(f-1, t-1)
	return nil
}
