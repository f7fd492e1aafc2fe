package blacksky

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/blacksky-gfx/blacksky/render/core"
	"github.com/blacksky-gfx/blacksky/render/raster"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// SnapshotModule renders headless: it runs Frames frames, writes the last
// one as a PNG and requests exit.
type SnapshotModule struct {
	Width, Height int
	Frames        int
	Out           string
	Scale         float64
	Caption       string

	// Writer replaces Out when set.
	Writer io.Writer
}

type SnapshotState struct {
	mod    SnapshotModule
	canvas *raster.Canvas
	primed bool
	done   bool
	// Err is the error of the last write, if any.
	Err error
}

func (mod SnapshotModule) Install(app *App, cmd *Commands) {
	ensureSingleRenderer(app, RendererSnapshot)
	ready := ensureRendererReady(app)

	if mod.Width <= 0 {
		mod.Width = 1280
	}
	if mod.Height <= 0 {
		mod.Height = 720
	}
	if mod.Frames <= 0 {
		mod.Frames = 1
	}
	if mod.Scale <= 0 {
		mod.Scale = 1
	}
	if mod.Out == "" && mod.Writer == nil {
		mod.Out = "blacksky.png"
	}

	cmd.AddResources(&SnapshotState{mod: mod, canvas: raster.New(mod.Width, mod.Height)})
	app.UseSystem(System(snapshotPrimeSystem).InStage(Prelude))
	app.UseSystem(System(snapshotRenderSystem).InStage(Render))

	ready.Fire()
}

func snapshotPrimeSystem(state *SnapshotState, input *Input, page *Page, cmd *Commands) {
	if state.primed {
		return
	}
	state.primed = true
	applyHostEvents(cmd.App(), []hostEvent{{kind: hostResize, width: state.mod.Width, height: state.mod.Height}}, input, page)
}

func snapshotRenderSystem(state *SnapshotState, t *Time, assets *AssetServer, out *FrameOutput, cmd *Commands) {
	assets.TakeReleased()
	if state.done || t.Frame < uint64(state.mod.Frames) {
		return
	}
	state.done = true
	defer cmd.App().RequestExit()

	state.canvas.Resize(out.Frame.Width, out.Frame.Height)
	state.canvas.DrawFrame(&out.Frame)
	img := ScaleImage(state.canvas.Image(), state.mod.Scale)
	if state.mod.Caption != "" {
		Caption(img, state.mod.Caption)
	}

	if state.Err = state.write(img); state.Err != nil {
		cmd.Logger().Errorf("Snapshot failed: %v", state.Err)
		return
	}
	if state.mod.Writer == nil {
		cmd.Logger().Infof("Wrote %s (%dx%d, frame %d)", state.mod.Out, img.Bounds().Dx(), img.Bounds().Dy(), out.Frame.Number)
	}
}

func (state *SnapshotState) write(img image.Image) error {
	if state.mod.Writer != nil {
		return png.Encode(state.mod.Writer, img)
	}
	f, err := os.Create(state.mod.Out)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}

// ScaleImage resamples img by factor with bilinear filtering. A factor of 1
// returns img unchanged.
func ScaleImage(img *image.RGBA, factor float64) *image.RGBA {
	if factor == 1 || factor <= 0 {
		return img
	}
	sz := img.Bounds().Size()
	w, h := max(int(float64(sz.X)*factor), 1), max(int(float64(sz.Y)*factor), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sx, sy := float64(w)/float64(sz.X), float64(h)/float64(sz.Y)
	s2d := f64.Aff3{sx, 0, 0, 0, sy, 0}
	draw.BiLinear.Transform(dst, s2d, img, img.Bounds(), draw.Src, nil)
	return dst
}

// Caption writes text in the bottom-left corner in the accent colour.
func Caption(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	b := img.Bounds()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{0, 212, 255, 255}),
		Face: face,
		Dot:  fixed.P(b.Min.X+8, b.Max.Y-8),
	}
	d.DrawString(text)
}

// RenderFrame rasterises f at its own size.
func RenderFrame(f *core.Frame) *image.RGBA {
	c := raster.New(f.Width, f.Height)
	c.DrawFrame(f)
	return c.Image()
}
