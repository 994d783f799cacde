package cli

import (
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fitsview/internal/render"
	"github.com/roach88/fitsview/internal/viewer"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Output      string // image file to write
	ImageFormat string // png | tiff; empty means config
	Scale       int    // 0 means config
	Surface     string // empty means config
}

// RenderResult describes a written image.
type RenderResult struct {
	File      string `json:"file"`
	Output    string `json:"output"`
	Format    string `json:"format"`
	Surface   string `json:"surface"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Scale     int    `json:"scale"`
	NonFinite int    `json:"non_finite"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render the image data of a FITS file",
		Long: `Load a FITS file, draw its 2D image as log-scaled greyscale and write
the frame as PNG or TIFF.

Each sample becomes one pixel, with row 0 at the bottom. Use --scale to
enlarge the result by an integer factor.

Exit codes:
  0 - Image written
  1 - File is not FITS, has no 2D data, or the draw failed
  2 - Command error (file missing, bad flags, output not writable)

Examples:
  fitsview render m31.fits -o m31.png
  fitsview render m31.fits -o m31.tiff --image-format tiff --scale 4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "out", "o", "", "output image path (required)")
	cmd.Flags().StringVar(&opts.ImageFormat, "image-format", "", "png or tiff (default from config)")
	cmd.Flags().IntVar(&opts.Scale, "scale", 0, "integer enlargement factor (default from config)")
	cmd.Flags().StringVar(&opts.Surface, "surface", "", "surface id recorded in the journal (default from config)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

// resolve fills unset flags from the config.
func (o *RenderOptions) resolve() (render.ImageFormat, error) {
	cfg := o.Config()
	if o.Scale == 0 {
		o.Scale = cfg.Surface.Scale
	}
	if o.Scale < 1 {
		return "", fmt.Errorf("scale must be at least 1, got %d", o.Scale)
	}
	if o.Scale > render.MaxScale {
		return "", fmt.Errorf("scale must be at most %d, got %d", render.MaxScale, o.Scale)
	}
	if o.Surface == "" {
		o.Surface = cfg.Surface.ID
	}
	if o.ImageFormat == "" {
		return cfg.ImageFormat()
	}
	return render.ParseImageFormat(o.ImageFormat)
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	format, err := opts.resolve()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid render options", err)
	}

	ctx := cmd.Context()
	run, err := startSession(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeRun(run)

	view, err := run.load(ctx, path)
	if err != nil {
		return err
	}
	out := opts.formatter(cmd)

	switch {
	case view.Kind == viewer.KindFileLoadedNotRecognized:
		return renderFailure(out, ErrCodeNotFITS, fmt.Sprintf("%s: %s", path, viewer.MsgNotRecognized), nil)
	case !view.HasDrawableImage:
		return renderFailure(out, ErrCodeNoData, fmt.Sprintf("%s: %s", path, viewer.MsgNoData), nil)
	}

	shape := view.File.Data.Shape()
	surface := render.NewRasterSurface(shape[0], shape[1])
	run.registry.Allocate(opts.Surface, surface)
	defer run.registry.Release(opts.Surface)

	diag, err := run.session.Draw(ctx, opts.Surface)
	if err != nil {
		var details any
		if code := render.Code(err); code != "" {
			details = map[string]string{"render_code": string(code)}
		}
		return renderFailure(out, ErrCodeRenderFailed, err.Error(), details)
	}
	if diag.Degenerate {
		slog.Warn("image has non-finite intensities", "file", view.Handle.Name, "non_finite", diag.NonFinite)
	}

	if err := writeImage(opts.Output, render.Scale(surface.Frame(), opts.Scale), format); err != nil {
		return WrapExitError(ExitCommandError, "failed to write image", err)
	}

	result := RenderResult{
		File:      view.Handle.Name,
		Output:    opts.Output,
		Format:    string(format),
		Surface:   opts.Surface,
		Width:     shape[0],
		Height:    shape[1],
		Scale:     opts.Scale,
		NonFinite: diag.NonFinite,
	}
	if opts.Format == "json" {
		return out.JSON(CLIResponse{Status: "ok", Data: result, Session: run.session.ID()})
	}
	fmt.Fprintf(out.Writer, "Rendered %s (%dx%d) to %s as %s, scale %d\n",
		result.File, result.Width, result.Height, result.Output, result.Format, result.Scale)
	if result.NonFinite > 0 {
		fmt.Fprintf(out.Writer, "Warning: %d non-finite intensities\n", result.NonFinite)
	}
	return nil
}

// renderFailure reports a draw that could not happen and exits with 1.
func renderFailure(out *OutputFormatter, code, message string, details any) error {
	if err := out.Error(code, message, details); err != nil {
		return err
	}
	return NewExitError(ExitFailure, message)
}

// writeImage encodes img to path, removing a partial file on failure.
func writeImage(path string, img image.Image, format render.ImageFormat) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return render.Encode(f, img, format)
}
