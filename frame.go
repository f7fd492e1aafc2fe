package blacksky

import (
	"sort"

	"github.com/blacksky-gfx/blacksky/render/core"
)

// FrameOutput is the draw list built in PreRender and consumed by the
// renderer in Render.
type FrameOutput struct {
	Frame core.Frame
	Clear [4]float32
}

type FrameModule struct {
	Clear [4]float32
}

func (mod FrameModule) Install(app *App, cmd *Commands) {
	clearColor := mod.Clear
	if clearColor == [4]float32{} {
		clearColor = [4]float32{0, 0, 0, 1}
	}
	cmd.AddResources(&FrameOutput{Clear: clearColor})
	ensureRedraw(app)
	app.UseSystem(System(frameSystem).InStage(PreRender))
}

func viewportOf(r Rect) core.Viewport {
	return core.Viewport{X: float32(r.X), Y: float32(r.Y), Width: float32(r.Width), Height: float32(r.Height)}
}

type spriteEntry struct {
	eid    EntityId
	sprite SpriteComponent
}

// frameSystem builds the draw list. Sprites are always animating, so a frame
// holding any of them requests a redraw.
func frameSystem(t *Time, page *Page, assets *AssetServer, out *FrameOutput, redraw *Redraw, cmd *Commands) {
	frame := &out.Frame
	frame.Reset(t.Frame, page.Width, page.Height)
	frame.Clear = out.Clear

	MakeQuery3[CameraComponent, ViewportComponent, TransformComponent](cmd).Map(func(eid EntityId, cam *CameraComponent, vp *ViewportComponent, tr *TransformComponent) bool {
		if vp.Rect.Empty() {
			return true
		}
		viewport := viewportOf(vp.Rect)
		name := ""
		if vi, ok := GetComponent[VisualInstanceComponent](cmd, eid); ok {
			name = vi.Name
		}

		model := *tr
		if tilt, ok := GetComponent[TiltComponent](cmd, eid); ok {
			model.Rotation = tilt.Quat().Mul(tr.Rotation)
		}
		mvp := core.Projection(cam.FovY, viewport.Aspect(), cam.Near, cam.Far).
			Mul4(core.View(cam.Distance)).
			Mul4(model.Model())

		if points, ok := GetComponent[PointsComponent](cmd, eid); ok {
			field, found := assets.PointField(points.Field)
			if found && field.Len() > 0 {
				frame.Points = append(frame.Points, core.PointBatch{
					Key:       string(points.Field),
					Label:     name,
					Viewport:  viewport,
					MVP:       mvp,
					Positions: field.Positions,
					Colors:    field.Colors,
					SizePx:    core.AttenuatedPointSize(points.PointSize, viewport.Height, cam.Distance),
					Opacity:   points.Opacity,
					Additive:  points.Additive,
				})
			}
		}
		if wire, ok := GetComponent[WireframeComponent](cmd, eid); ok {
			mesh, found := assets.WireMesh(wire.Mesh)
			if found && mesh.EdgeCount() > 0 {
				frame.Lines = append(frame.Lines, core.LineBatch{
					Key:       string(wire.Mesh),
					Label:     name,
					Viewport:  viewport,
					MVP:       mvp,
					Positions: mesh.Positions,
					Indices:   mesh.Indices,
					Color:     wire.Color,
					Opacity:   wire.Opacity,
				})
			}
		}
		return true
	})
	sort.SliceStable(frame.Points, func(i, j int) bool { return frame.Points[i].Label < frame.Points[j].Label })
	sort.SliceStable(frame.Lines, func(i, j int) bool { return frame.Lines[i].Label < frame.Lines[j].Label })

	var sprites []spriteEntry
	MakeQuery1[SpriteComponent](cmd).Map(func(eid EntityId, sp *SpriteComponent) bool {
		if sp.Radius > 0 && sp.Color[3] > 0 {
			sprites = append(sprites, spriteEntry{eid: eid, sprite: *sp})
		}
		return true
	})
	if len(sprites) > 0 {
		redraw.Request()
	}
	sort.Slice(sprites, func(i, j int) bool { return sprites[i].eid < sprites[j].eid })
	for _, e := range sprites {
		s := core.Sprite{X: e.sprite.X, Y: e.sprite.Y, Radius: e.sprite.Radius, Glow: e.sprite.Glow, Color: e.sprite.Color}
		if e.sprite.Layer == LayerBackground {
			frame.Background = append(frame.Background, s)
		} else {
			frame.Overlay = append(frame.Overlay, s)
		}
	}
}
