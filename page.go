package blacksky

import (
	"math"
)

// Rect is a pixel rectangle with the origin at the window's top-left.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Container is a named square slot on the page. The point (OriginX, OriginY)
// of the square, in fractions of its size, sits at (AnchorX, AnchorY) in
// fractions of the window. Size is capped to MaxWidthFraction of the window
// width when that is positive.
type Container struct {
	Name             string  `toml:"name" yaml:"name"`
	AnchorX          float64 `toml:"anchor_x" yaml:"anchor_x"`
	AnchorY          float64 `toml:"anchor_y" yaml:"anchor_y"`
	OriginX          float64 `toml:"origin_x" yaml:"origin_x"`
	OriginY          float64 `toml:"origin_y" yaml:"origin_y"`
	Size             float64 `toml:"size" yaml:"size"`
	MaxWidthFraction float64 `toml:"max_width_fraction" yaml:"max_width_fraction"`
}

func (c Container) layout(width, height int) Rect {
	size := c.Size
	if c.MaxWidthFraction > 0 {
		size = math.Min(size, float64(width)*c.MaxWidthFraction)
	}
	return Rect{
		X:      c.AnchorX*float64(width) - c.OriginX*size,
		Y:      c.AnchorY*float64(height) - c.OriginY*size,
		Width:  size,
		Height: size,
	}
}

const GalaxyContainer = "galaxy-container"

// DefaultContainers is the galaxy slot centred near the top of the page plus
// three shape slots along the top-right edge.
func DefaultContainers() []Container {
	containers := []Container{{
		Name:             GalaxyContainer,
		AnchorX:          0.5,
		AnchorY:          0.45,
		OriginX:          0.5,
		OriginY:          0.5,
		Size:             400,
		MaxWidthFraction: 0.8,
	}}
	for i, name := range []string{"opening", "mind", "creations"} {
		containers = append(containers, Container{
			Name:    name,
			AnchorX: 1 - (float64(i)*0.15 + 0.05),
			AnchorY: 0.1,
			OriginX: 1,
			OriginY: 0,
			Size:    150,
		})
	}
	return containers
}

// Page is the window and the named containers laid out in it.
type Page struct {
	Width, Height int

	containers []Container
	rects      map[string]Rect
	resized    bool
}

func NewPage(width, height int, containers ...Container) *Page {
	p := &Page{containers: containers}
	p.Resize(width, height)
	return p
}

// Resize recomputes every container rect. It is the "viewport resized" signal.
func (p *Page) Resize(width, height int) {
	p.Width, p.Height = width, height
	p.rects = make(map[string]Rect, len(p.containers))
	for _, c := range p.containers {
		p.rects[c.Name] = c.layout(width, height)
	}
	p.resized = true
}

// SetContainers replaces the container set and lays it out again.
func (p *Page) SetContainers(containers []Container) {
	p.containers = containers
	p.Resize(p.Width, p.Height)
}

// Container returns the rect of the named container, if present.
func (p *Page) Container(name string) (Rect, bool) {
	r, ok := p.rects[name]
	return r, ok
}

func (p *Page) Containers() []Container {
	return p.containers
}

// TakeResized reports whether the layout changed since the last call.
func (p *Page) TakeResized() bool {
	r := p.resized
	p.resized = false
	return r
}

type PageModule struct {
	Width, Height int
	Containers    []Container
}

func (mod PageModule) Install(app *App, cmd *Commands) {
	containers := mod.Containers
	if containers == nil {
		containers = DefaultContainers()
	}
	width, height := mod.Width, mod.Height
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	cmd.AddResources(NewPage(width, height, containers...))
	app.UseSystem(System(layoutSystem).InStage(PreUpdate))
}

// layoutSystem moves instance viewports after a resize. An instance whose
// container disappeared gets an empty viewport and is skipped when drawing.
func layoutSystem(page *Page, cmd *Commands) {
	if !page.TakeResized() {
		return
	}
	MakeQuery2[VisualInstanceComponent, ViewportComponent](cmd).Map(func(eid EntityId, vi *VisualInstanceComponent, vp *ViewportComponent) bool {
		rect, ok := page.Container(vi.Container)
		if !ok {
			rect = Rect{}
		}
		vp.Rect = rect
		return true
	})
}
