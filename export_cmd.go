package main

import (
	"image"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"brushkit/canvas"
	"brushkit/export"
	"brushkit/thumbnail"
)

type exportOptions struct {
	output    string
	options   map[string]string
	verbosity int
}

func newExportCommand() *cobra.Command {
	o := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export -o OUTPUT LAYER...",
		Short: "Stack images as layers and export the flattened result",
		Long: "Each LAYER image is placed at the origin, bottom first. The output " +
			"format follows the extension of OUTPUT (bmp, png, jpg, gif, tif).",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(o, args)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&o.output, "output", "o", "", "output file")
	fs.StringToStringVar(&o.options, "option", nil, "encoder option, e.g. quality=90 or compression=lzw")
	fs.IntVarP(&o.verbosity, "verbosity", "v", 0, "log verbosity")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runExport(o *exportOptions, layers []string) error {
	logger := newLogger(o.verbosity).WithName("export")

	var size image.Rectangle
	loaded := make([]*canvas.Layer, 0, len(layers))
	for _, path := range layers {
		px, err := thumbnail.LoadImage(path)
		if err != nil {
			return err
		}
		b := px.Bounds()
		size = size.Union(image.Rect(0, 0, b.Dx(), b.Dy()))
		loaded = append(loaded, canvas.NewLayer(path, px))
	}
	img := canvas.NewImage(size.Dx(), size.Dy())
	for _, l := range loaded {
		img.AddLayer(l)
	}
	doc := canvas.NewDocument(img, o.output)

	exporter := export.NewBMPExport()
	for _, w := range exporter.Check(doc) {
		logger.Info("layer will be converted", "layer", w.Layer, "detail", w.Message)
	}

	f, err := os.Create(o.output)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	convErr := exporter.Convert(doc, f, export.Configuration(o.options))
	closeErr := f.Close()
	if convErr != nil {
		_ = os.Remove(o.output)
		logger.Error(convErr, "export failed", "status", export.StatusOf(convErr).String())
		return convErr
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, "close output")
	}
	logger.V(1).Info("exported", "output", o.output, "layers", len(layers), "size", size.Size())
	return nil
}
