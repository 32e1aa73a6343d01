package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	dxfOutDir      string
	dxfParams      DXFParams
	dxfLayers      int
	dxfLayerHeight float64
)

var dxfCmd = &cobra.Command{
	Use:   "dxf <drawing.dxf>",
	Short: "Slice the contours of a DXF drawing",
	Long: `Slice the contours of a DXF drawing.

A single closed contour is stacked into --layers layers of --layer-height.
A single open contour is printed back and forth the same way. Several
contours are printed in height order as one continuous path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		p := dxfParams
		p.Heights = stackHeights(dxfLayers, dxfLayerHeight)
		app := NewApp(cfg, logger)
		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		return writeResult(app, args[0], dxfOutDir, app.SliceDXF(name, f, p))
	},
}

func init() {
	fl := dxfCmd.Flags()
	fl.StringVarP(&dxfOutDir, "out", "o", "", "output directory (default: output.dir, else next to the drawing)")
	fl.Float64Var(&dxfParams.Distance, "distance", 5, "distance between frames in mm")
	fl.Float64Var(&dxfParams.Seam, "seam", 0, "seam location as a normalized parameter in [0,1]")
	fl.Float64Var(&dxfParams.SeamLength, "seam-length", 0, "length of the layer transition in mm")
	fl.StringVar(&dxfParams.Transition, "transition", "linear", "layer transition: linear, bezier or interpolated")
	fl.IntVar(&dxfLayers, "layers", 1, "number of layers for a single contour")
	fl.Float64Var(&dxfLayerHeight, "layer-height", 10, "layer height in mm for a single contour")
	fl.Float64Var(&dxfParams.HotEnd, "hot-end", 0, "hot end temperature, 0 leaves it unset")
	fl.Float64Var(&dxfParams.Bed, "bed", 0, "bed temperature, 0 leaves it unset")
	fl.Float64Var(&dxfParams.FeedRate, "feed-rate", 0, "feed rate in mm/min, 0 leaves it unset")
}

// stackHeights returns n heights step apart starting at zero.
func stackHeights(n int, step float64) []float64 {
	if n < 1 {
		n = 1
	}
	hs := make([]float64, n)
	for i := range hs {
		hs[i] = float64(i) * step
	}
	return hs
}
