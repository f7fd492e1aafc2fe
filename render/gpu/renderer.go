// Package gpu draws a core.Frame with WebGPU.
package gpu

import (
	"fmt"
	"unsafe"

	"github.com/blacksky-gfx/blacksky/render/core"
	"github.com/cogentcore/webgpu/wgpu"
)

// meshBuffers holds the uploaded vertex data of one asset.
type meshBuffers struct {
	positions *wgpu.Buffer
	colors    *wgpu.Buffer // points only
	indices   *wgpu.Buffer // lines only
	count     uint32
}

func (m *meshBuffers) release() {
	for _, b := range []*wgpu.Buffer{m.positions, m.colors, m.indices} {
		if b != nil {
			b.Release()
		}
	}
}

// uniformSlot is one uniform buffer and its bind group. Every batch drawn in
// a frame gets its own slot since all writes land before the submit.
type uniformSlot struct {
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
}

func (s *uniformSlot) release() {
	s.bindGroup.Release()
	s.buffer.Release()
}

type Renderer struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration

	batchBGL     *wgpu.BindGroupLayout
	batchLayout  *wgpu.PipelineLayout
	spriteBGL    *wgpu.BindGroupLayout
	spriteLayout *wgpu.PipelineLayout

	pointsAdditive *wgpu.RenderPipeline
	pointsAlpha    *wgpu.RenderPipeline
	lines          *wgpu.RenderPipeline
	sprites        *wgpu.RenderPipeline

	meshes       map[string]*meshBuffers
	slots        []*uniformSlot
	spriteSlot   *uniformSlot
	spriteBuffer *wgpu.Buffer
	spriteCap    int
	spriteData   []spriteInstance
}

// New creates a device for the surface described by desc and configures it
// at width x height framebuffer pixels.
func New(desc *wgpu.SurfaceDescriptor, width, height int) (r *Renderer, err error) {
	r = &Renderer{meshes: make(map[string]*meshBuffers)}
	defer func() {
		if err != nil {
			r.Close()
			r = nil
		}
	}()

	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(desc)

	r.adapter, err = r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}

	r.device, err = r.adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "BlackSkyDevice"})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	r.queue = r.device.GetQueue()

	caps := r.surface.GetCapabilities(r.adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return nil, fmt.Errorf("surface has no usable format")
	}
	r.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	r.surface.Configure(r.adapter, r.device, r.config)

	if err = r.createPipelines(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) createPipelines() (err error) {
	format := r.config.Format
	if r.batchBGL, r.batchLayout, err = uniformLayout(r.device, "Batch", batchUniformSize); err != nil {
		return fmt.Errorf("batch layout: %w", err)
	}
	if r.spriteBGL, r.spriteLayout, err = uniformLayout(r.device, "Sprite", spriteUniformSize); err != nil {
		return fmt.Errorf("sprite layout: %w", err)
	}
	if r.pointsAdditive, err = pointsPipeline(r.device, format, r.batchLayout, blendAdditive, "PointsAdditive"); err != nil {
		return fmt.Errorf("points pipeline: %w", err)
	}
	if r.pointsAlpha, err = pointsPipeline(r.device, format, r.batchLayout, blendAlpha, "PointsAlpha"); err != nil {
		return fmt.Errorf("points pipeline: %w", err)
	}
	if r.lines, err = linesPipeline(r.device, format, r.batchLayout); err != nil {
		return fmt.Errorf("lines pipeline: %w", err)
	}
	if r.sprites, err = spritesPipeline(r.device, format, r.spriteLayout); err != nil {
		return fmt.Errorf("sprites pipeline: %w", err)
	}
	r.spriteSlot, err = r.newSlot(r.spriteBGL, spriteUniformSize, "SpriteUniforms")
	return err
}

// Size is the configured framebuffer size.
func (r *Renderer) Size() (int, int) {
	return int(r.config.Width), int(r.config.Height)
}

// Resize reconfigures the surface. Zero sizes (minimised windows) are ignored.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if uint32(width) == r.config.Width && uint32(height) == r.config.Height {
		return
	}
	r.config.Width = uint32(width)
	r.config.Height = uint32(height)
	r.surface.Configure(r.adapter, r.device, r.config)
}

// Release frees the uploaded buffers of the given asset keys. Unknown keys
// are ignored.
func (r *Renderer) Release(keys ...string) {
	for _, k := range keys {
		if m, ok := r.meshes[k]; ok {
			m.release()
			delete(r.meshes, k)
		}
	}
}

func (r *Renderer) newSlot(bgl *wgpu.BindGroupLayout, size uint64, label string) (*uniformSlot, error) {
	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + "BG",
		Layout: bgl,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Size: size},
		},
	})
	if err != nil {
		buf.Release()
		return nil, err
	}
	return &uniformSlot{buffer: buf, bindGroup: bg}, nil
}

func (r *Renderer) slot(i int) (*uniformSlot, error) {
	for len(r.slots) <= i {
		s, err := r.newSlot(r.batchBGL, batchUniformSize, fmt.Sprintf("BatchUniforms%d", len(r.slots)))
		if err != nil {
			return nil, err
		}
		r.slots = append(r.slots, s)
	}
	return r.slots[i], nil
}

func (r *Renderer) upload(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return r.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: data,
		Usage:    usage | wgpu.BufferUsageCopyDst,
	})
}

func (r *Renderer) pointMesh(b *core.PointBatch) (*meshBuffers, error) {
	if m, ok := r.meshes[b.Key]; ok {
		return m, nil
	}
	m := &meshBuffers{count: uint32(b.Len())}
	var err error
	if m.positions, err = r.upload(b.Label+"Positions", wgpu.ToBytes(b.Positions), wgpu.BufferUsageVertex); err != nil {
		return nil, err
	}
	if m.colors, err = r.upload(b.Label+"Colors", wgpu.ToBytes(b.Colors[:b.Len()*3]), wgpu.BufferUsageVertex); err != nil {
		m.release()
		return nil, err
	}
	if b.Key != "" {
		r.meshes[b.Key] = m
	}
	return m, nil
}

func (r *Renderer) lineMesh(b *core.LineBatch) (*meshBuffers, error) {
	if m, ok := r.meshes[b.Key]; ok {
		return m, nil
	}
	m := &meshBuffers{count: uint32(len(b.Indices))}
	var err error
	if m.positions, err = r.upload(b.Label+"Positions", wgpu.ToBytes(b.Positions), wgpu.BufferUsageVertex); err != nil {
		return nil, err
	}
	if m.indices, err = r.upload(b.Label+"Indices", wgpu.ToBytes(b.Indices), wgpu.BufferUsageIndex); err != nil {
		m.release()
		return nil, err
	}
	if b.Key != "" {
		r.meshes[b.Key] = m
	}
	return m, nil
}

func (r *Renderer) writeSprites(f *core.Frame) error {
	r.spriteData = r.spriteData[:0]
	for _, layer := range [][]core.Sprite{f.Background, f.Overlay} {
		for _, s := range layer {
			r.spriteData = append(r.spriteData, spriteInstance{
				Disc:  [4]float32{s.X, s.Y, s.Radius, s.Glow},
				Color: s.Color,
			})
		}
	}
	if len(r.spriteData) == 0 {
		return nil
	}
	if r.spriteBuffer == nil || r.spriteCap < len(r.spriteData) {
		if r.spriteBuffer != nil {
			r.spriteBuffer.Release()
		}
		r.spriteCap = len(r.spriteData) + 128
		buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "SpriteInstances",
			Size:  uint64(r.spriteCap) * uint64(unsafe.Sizeof(spriteInstance{})),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			r.spriteBuffer, r.spriteCap = nil, 0
			return err
		}
		r.spriteBuffer = buf
	}
	if err := r.queue.WriteBuffer(r.spriteBuffer, 0, wgpu.ToBytes(r.spriteData)); err != nil {
		return err
	}
	screen := [4]float32{float32(max(f.Width, 1)), float32(max(f.Height, 1)), 0, 0}
	return r.queue.WriteBuffer(r.spriteSlot.buffer, 0, wgpu.ToBytes(screen[:]))
}

// drawCall is one batch ready to record.
type drawCall struct {
	pipeline *wgpu.RenderPipeline
	slot     *uniformSlot
	mesh     *meshBuffers
	scissor  scissor
	indexed  bool
}

// Draw renders f to the surface and presents it.
func (r *Renderer) Draw(f *core.Frame) error {
	fbW, fbH := r.Size()
	sx, sy := scaleFactors(f.Width, f.Height, fbW, fbH)

	var calls []drawCall
	next := 0
	for i := range f.Points {
		b := &f.Points[i]
		sc, ok := clampScissor(b.Viewport, sx, sy, fbW, fbH)
		if !ok || b.Len() == 0 {
			continue
		}
		mesh, err := r.pointMesh(b)
		if err != nil {
			return fmt.Errorf("upload %s: %w", b.Label, err)
		}
		slot, err := r.slot(next)
		if err != nil {
			return err
		}
		next++
		u := pointUniforms(b, sc, sx)
		if err := r.queue.WriteBuffer(slot.buffer, 0, wgpu.ToBytes([]batchUniforms{u})); err != nil {
			return err
		}
		pipeline := r.pointsAlpha
		if b.Additive {
			pipeline = r.pointsAdditive
		}
		calls = append(calls, drawCall{pipeline: pipeline, slot: slot, mesh: mesh, scissor: sc})
	}
	for i := range f.Lines {
		b := &f.Lines[i]
		sc, ok := clampScissor(b.Viewport, sx, sy, fbW, fbH)
		if !ok || len(b.Indices) == 0 {
			continue
		}
		mesh, err := r.lineMesh(b)
		if err != nil {
			return fmt.Errorf("upload %s: %w", b.Label, err)
		}
		slot, err := r.slot(next)
		if err != nil {
			return err
		}
		next++
		u := lineUniforms(b)
		if err := r.queue.WriteBuffer(slot.buffer, 0, wgpu.ToBytes([]batchUniforms{u})); err != nil {
			return err
		}
		calls = append(calls, drawCall{pipeline: r.lines, slot: slot, mesh: mesh, scissor: sc, indexed: true})
	}
	if err := r.writeSprites(f); err != nil {
		return fmt.Errorf("sprites: %w", err)
	}

	nextTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(f.Clear[0]),
					G: float64(f.Clear[1]),
					B: float64(f.Clear[2]),
					A: float64(f.Clear[3]),
				},
			},
		},
	})

	full := scissor{W: uint32(fbW), H: uint32(fbH)}
	r.drawSprites(pass, full, 0, len(f.Background))
	for _, c := range calls {
		c.record(pass)
	}
	r.drawSprites(pass, full, len(f.Background), len(f.Overlay))

	if err := pass.End(); err != nil {
		return err
	}
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()

	r.queue.Submit(cmd)
	r.surface.Present()
	return nil
}

func (c drawCall) record(pass *wgpu.RenderPassEncoder) {
	s := c.scissor
	pass.SetViewport(float32(s.X), float32(s.Y), float32(s.W), float32(s.H), 0, 1)
	pass.SetScissorRect(s.X, s.Y, s.W, s.H)
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, c.slot.bindGroup, nil)
	pass.SetVertexBuffer(0, c.mesh.positions, 0, wgpu.WholeSize)
	if c.indexed {
		pass.SetIndexBuffer(c.mesh.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(c.mesh.count, 1, 0, 0, 0)
		return
	}
	pass.SetVertexBuffer(1, c.mesh.colors, 0, wgpu.WholeSize)
	pass.Draw(6, c.mesh.count, 0, 0)
}

func (r *Renderer) drawSprites(pass *wgpu.RenderPassEncoder, full scissor, first, count int) {
	if count == 0 || r.spriteBuffer == nil {
		return
	}
	pass.SetViewport(0, 0, float32(full.W), float32(full.H), 0, 1)
	pass.SetScissorRect(0, 0, full.W, full.H)
	pass.SetPipeline(r.sprites)
	pass.SetBindGroup(0, r.spriteSlot.bindGroup, nil)
	pass.SetVertexBuffer(0, r.spriteBuffer, 0, wgpu.WholeSize)
	pass.Draw(6, uint32(count), 0, uint32(first))
}

// Close releases every GPU object. It is safe on a partially built renderer.
func (r *Renderer) Close() {
	for k, m := range r.meshes {
		m.release()
		delete(r.meshes, k)
	}
	for _, s := range r.slots {
		s.release()
	}
	r.slots = nil
	if r.spriteSlot != nil {
		r.spriteSlot.release()
		r.spriteSlot = nil
	}
	if r.spriteBuffer != nil {
		r.spriteBuffer.Release()
		r.spriteBuffer = nil
	}
	for _, p := range []**wgpu.RenderPipeline{&r.pointsAdditive, &r.pointsAlpha, &r.lines, &r.sprites} {
		if *p != nil {
			(*p).Release()
			*p = nil
		}
	}
	for _, l := range []**wgpu.PipelineLayout{&r.batchLayout, &r.spriteLayout} {
		if *l != nil {
			(*l).Release()
			*l = nil
		}
	}
	for _, l := range []**wgpu.BindGroupLayout{&r.batchBGL, &r.spriteBGL} {
		if *l != nil {
			(*l).Release()
			*l = nil
		}
	}
	if r.queue != nil {
		r.queue.Release()
		r.queue = nil
	}
	if r.device != nil {
		r.device.Release()
		r.device = nil
	}
	if r.adapter != nil {
		r.adapter.Release()
		r.adapter = nil
	}
	if r.surface != nil {
		r.surface.Release()
		r.surface = nil
	}
	if r.instance != nil {
		r.instance.Release()
		r.instance = nil
	}
}
