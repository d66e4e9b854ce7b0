package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/pdfworkbench/internal/config"
	"github.com/Lllllllleong/pdfworkbench/internal/download"
	"github.com/Lllllllleong/pdfworkbench/internal/intake"
	"github.com/Lllllllleong/pdfworkbench/internal/services"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate [files...]",
	Short: "Rotate every page clockwise",
	Long: `Rotate turns every page of each file clockwise by --degrees, which must
be a multiple of 90. Outputs are named rotated-<name>.`,
	RunE: runRotate,
}

var compressCmd = &cobra.Command{
	Use:   "compress [files...]",
	Short: "Re-encode PDF files to reduce their size",
	Long: `Compress re-encodes each file with stream and object optimisations and
reports the size change. Outputs are named compressed-<name>; an output that
is not smaller is still saved and reported as such.`,
	RunE: runCompress,
}

var toImageCmd = &cobra.Command{
	Use:   "to-image [files...]",
	Short: "Render every page to a JPEG or PNG image",
	RunE:  runToImage,
}

var toTextCmd = &cobra.Command{
	Use:   "to-text [files...]",
	Short: "Extract plain text from PDF files",
	RunE:  runToText,
}

var fromImagesCmd = &cobra.Command{
	Use:   "from-images [images...]",
	Short: "Place JPEG or PNG images on A4 pages",
	Long: `From-images embeds each image on its own A4 page, scaled to fit and
centred. With --combine all images go, in argument order, into images.pdf.`,
	RunE: runFromImages,
}

func init() {
	rotateCmd.Flags().Int("degrees", 90, "clockwise rotation, a multiple of 90")

	toImageCmd.Flags().Float64("scale", 0, "render scale, 1.0 = 72 dpi (default 2.0)")
	toImageCmd.Flags().String("format", "", "image format: jpeg or png (default jpeg)")
	toImageCmd.Flags().Int("quality", 0, "JPEG quality 1-100 (default 92)")
	mustBind(config.KeyRenderScale, toImageCmd.Flags().Lookup("scale"))
	mustBind(config.KeyRenderFormat, toImageCmd.Flags().Lookup("format"))
	mustBind(config.KeyJPEGQuality, toImageCmd.Flags().Lookup("quality"))

	fromImagesCmd.Flags().Bool("combine", false, "put all images into a single images.pdf")

	rootCmd.AddCommand(rotateCmd, compressCmd, toImageCmd, toTextCmd, fromImagesCmd)
}

func runRotate(cmd *cobra.Command, args []string) error {
	degrees, _ := cmd.Flags().GetInt("degrees")
	if _, err := services.NormalizeRotation(degrees); err != nil {
		return err
	}
	files, err := gather(cmd, args, intake.PDFPolicy("rotate", cfg.PDFMaxBytes))
	if err != nil {
		return err
	}
	res, err := newWorkbench().Rotate(cmd.Context(), files, degrees)
	if err != nil {
		return err
	}
	return deliver(cmd.Context(), cmd, download.FromTransforms(res))
}

func runCompress(cmd *cobra.Command, args []string) error {
	files, err := gather(cmd, args, intake.PDFPolicy("compress", cfg.CompressMaxBytes))
	if err != nil {
		return err
	}
	res, err := newWorkbench().Compress(cmd.Context(), files)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range res {
		before, after := download.FormatSize(r.InputSize), download.FormatSize(r.OutputSize)
		if r.SizeDelta() > 0 {
			fmt.Fprintf(out, "%s: %s -> %s (%.1f%% smaller)\n", r.Source, before, after, r.ReductionPercent())
		} else {
			fmt.Fprintf(out, "%s: %s -> %s (no reduction)\n", r.Source, before, after)
		}
	}
	return deliver(cmd.Context(), cmd, download.FromTransforms(res))
}

func runToImage(cmd *cobra.Command, args []string) error {
	files, err := gather(cmd, args, intake.PDFPolicy("to-image", cfg.PDFMaxBytes))
	if err != nil {
		return err
	}
	res, err := newWorkbench().Rasterize(cmd.Context(), files, services.RasterOptions{
		Scale:   cfg.RenderScale,
		Format:  cfg.RenderFormat,
		Quality: cfg.JPEGQuality,
	})
	if err != nil {
		return err
	}
	for _, r := range res {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages rendered\n", r.Source, len(r.Outputs))
	}
	return deliver(cmd.Context(), cmd, download.FromTransforms(res))
}

func runToText(cmd *cobra.Command, args []string) error {
	files, err := gather(cmd, args, intake.PDFPolicy("to-text", cfg.PDFMaxBytes))
	if err != nil {
		return err
	}
	res, err := newWorkbench().ExtractText(cmd.Context(), files)
	if err != nil {
		return err
	}
	for _, r := range res {
		if !r.TextFound {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.Source, services.NoTextMessage)
		}
	}
	return deliver(cmd.Context(), cmd, download.FromTransforms(res))
}

func runFromImages(cmd *cobra.Command, args []string) error {
	files, err := gather(cmd, args, intake.ImagePolicy("from-images", cfg.ImageMaxBytes))
	if err != nil {
		return err
	}
	combine, _ := cmd.Flags().GetBool("combine")
	res, err := newWorkbench().ImagesToPDF(cmd.Context(), files, services.ImageOptions{Combine: combine})
	if err != nil {
		return err
	}
	return deliver(cmd.Context(), cmd, download.FromTransforms(res))
}
