package shade

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"path/filepath"
	"testing"

	"github.com/go-sif/skyshade"
	"github.com/go-sif/skyshade/accumulators"
	"github.com/go-sif/skyshade/datasource"
	"github.com/go-sif/skyshade/schema"
	"github.com/stretchr/testify/require"
)

func createCanvas(t *testing.T, points [][2]float64) *accumulators.Canvas {
	s := schema.CreateSchema()
	s.CreateColumn("x", &skyshade.Float64ColumnType{})
	s.CreateColumn("y", &skyshade.Float64ColumnType{})
	canvas, err := accumulators.NewCanvas(accumulators.CanvasSpec{
		X: "x", Y: "y", Width: 2, Height: 2,
		XRange: accumulators.Range{Min: 0, Max: 2},
		YRange: accumulators.Range{Min: 0, Max: 2},
	})
	require.Nil(t, err)
	part := datasource.CreateBuildablePartition(len(points), s)
	for _, p := range points {
		row, err := part.AppendEmptyRowData(datasource.CreateTempRow())
		require.Nil(t, err)
		require.Nil(t, row.SetFloat64("x", p[0]))
		require.Nil(t, row.SetFloat64("y", p[1]))
	}
	require.Nil(t, part.ForEachRow(canvas.Accumulate))
	return canvas
}

func TestTransferFuncs(t *testing.T) {
	counts := []uint32{0, 1, 1, 2, 8}
	eq := EqHist(counts)
	require.True(t, math.IsNaN(eq[0]))
	// cdf is 0.5, 0.5, 0.75, 1 rescaled over [0.5, 1]
	require.InDeltaSlice(t, []float64{0, 0, 0.5, 1}, eq[1:], 1e-9)

	lin := Linear(counts)
	require.True(t, math.IsNaN(lin[0]))
	require.InDeltaSlice(t, []float64{0, 0, 1.0 / 7, 1}, lin[1:], 1e-9)

	cbrt := Cbrt(counts)
	require.InDelta(t, 1.0, cbrt[4], 1e-9)
	require.InDelta(t, (math.Cbrt(2)-1)/(2-1), cbrt[3], 1e-9)

	lg := Log(counts)
	require.InDelta(t, 0, lg[1], 1e-9)
	require.InDelta(t, 1, lg[4], 1e-9)

	// a single non-zero level takes the top of the colormap
	require.Equal(t, 1.0, Linear([]uint32{0, 3, 3})[1])
}

func TestTransferByName(t *testing.T) {
	for _, name := range []string{"eq_hist", "log", "cbrt", "linear", ""} {
		_, err := TransferByName(name)
		require.Nil(t, err)
	}
	_, err := TransferByName("sqrt")
	require.NotNil(t, err)
}

func TestColormap(t *testing.T) {
	require.Equal(t, color.RGBA{0, 0, 0, 0xff}, Gray.At(0))
	require.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, Gray.At(1))
	require.Equal(t, color.RGBA{0x80, 0x80, 0x80, 0xff}, Gray.At(0.5))
	require.Equal(t, Fire[len(Fire)-1], Fire.At(2))

	for _, name := range []string{"fire", "viridis", "gray", "blues"} {
		cmap, err := ColormapByName(name)
		require.Nil(t, err)
		require.True(t, len(cmap) >= 2)
	}
	_, err := ColormapByName("rainbow")
	require.NotNil(t, err)
	_, err = ParseColormap("#000000", "#zzzzzz")
	require.NotNil(t, err)
	_, err = ParseColormap("#000000")
	require.NotNil(t, err)
}

func TestShadeOrientation(t *testing.T) {
	// three points in the bottom-left cell, one in the top-right
	canvas := createCanvas(t, [][2]float64{{0.1, 0.1}, {0.2, 0.2}, {0.3, 0.3}, {1.5, 1.9}})
	img, err := Shade(canvas, Options{Colormap: Gray, How: Linear})
	require.Nil(t, err)
	require.Equal(t, 2, img.Bounds().Dx())
	require.Equal(t, 2, img.Bounds().Dy())
	// y increases upward: the bottom-left cell is the last image row
	require.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(0, 1))
	require.Equal(t, color.RGBA{0, 0, 0, 0xff}, img.RGBAAt(1, 0))
	// empty cells are transparent
	require.Equal(t, color.RGBA{}, img.RGBAAt(0, 0))
	require.Equal(t, color.RGBA{}, img.RGBAAt(1, 1))

	img, err = Shade(canvas, Options{Colormap: Gray, How: Linear, Background: color.White})
	require.Nil(t, err)
	require.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(0, 0))
}

func TestWritePNG(t *testing.T) {
	canvas := createCanvas(t, [][2]float64{{0.5, 0.5}, {1.5, 1.5}, {1.5, 1.5}})
	img, err := Shade(canvas, Options{})
	require.Nil(t, err)
	var buf bytes.Buffer
	require.Nil(t, WritePNG(&buf, img))
	decoded, err := png.Decode(&buf)
	require.Nil(t, err)
	require.Equal(t, img.Bounds(), decoded.Bounds())

	path := filepath.Join(t.TempDir(), "out.png")
	require.Nil(t, SavePNG(path, img))
	_, err = Shade(nil, Options{})
	require.NotNil(t, err)
}
