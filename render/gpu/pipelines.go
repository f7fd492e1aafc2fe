package gpu

import (
	"unsafe"

	"github.com/blacksky-gfx/blacksky/render/shaders"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// batchUniforms matches the Uniforms struct in points.wgsl and lines.wgsl.
type batchUniforms struct {
	MVP    mgl32.Mat4
	Params [4]float32
}

// spriteInstance matches the sprite instance attributes.
type spriteInstance struct {
	Disc  [4]float32 // x, y, radius, glow
	Color [4]float32
}

const (
	batchUniformSize  = uint64(unsafe.Sizeof(batchUniforms{}))
	spriteUniformSize = 16
)

var (
	blendAlpha = &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}
	blendAdditive = &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOne,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
		},
	}
)

type pipelineDesc struct {
	label    string
	code     string
	layout   *wgpu.PipelineLayout
	buffers  []wgpu.VertexBufferLayout
	topology wgpu.PrimitiveTopology
	blend    *wgpu.BlendState
}

// uniformLayout is group 0 of every pipeline: one uniform buffer of size
// bytes. Pipelines sharing it can share bind groups.
func uniformLayout(device *wgpu.Device, label string, size uint64) (*wgpu.BindGroupLayout, *wgpu.PipelineLayout, error) {
	bgl, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label + "BGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: size,
				},
			},
		},
	})
	if err != nil {
		return nil, nil, err
	}
	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label + "Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		bgl.Release()
		return nil, nil, err
	}
	return bgl, layout, nil
}

func createPipeline(device *wgpu.Device, format wgpu.TextureFormat, d pipelineDesc) (*wgpu.RenderPipeline, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          d.label + "Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: d.code},
	})
	if err != nil {
		return nil, err
	}
	defer module.Release()

	return device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  d.label + "Pipeline",
		Layout: d.layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    d.buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
					Blend:     d.blend,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  d.topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
}

func vec3Instance(location uint32) wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 12,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: location},
		},
	}
}

func pointsPipeline(device *wgpu.Device, format wgpu.TextureFormat, layout *wgpu.PipelineLayout, blend *wgpu.BlendState, label string) (*wgpu.RenderPipeline, error) {
	return createPipeline(device, format, pipelineDesc{
		label:    label,
		code:     shaders.PointsWGSL,
		layout:   layout,
		buffers:  []wgpu.VertexBufferLayout{vec3Instance(0), vec3Instance(1)},
		topology: wgpu.PrimitiveTopologyTriangleList,
		blend:    blend,
	})
}

func linesPipeline(device *wgpu.Device, format wgpu.TextureFormat, layout *wgpu.PipelineLayout) (*wgpu.RenderPipeline, error) {
	return createPipeline(device, format, pipelineDesc{
		label:  "Lines",
		code:   shaders.LinesWGSL,
		layout: layout,
		buffers: []wgpu.VertexBufferLayout{
			{
				ArrayStride: 12,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				},
			},
		},
		topology: wgpu.PrimitiveTopologyLineList,
		blend:    blendAlpha,
	})
}

func spritesPipeline(device *wgpu.Device, format wgpu.TextureFormat, layout *wgpu.PipelineLayout) (*wgpu.RenderPipeline, error) {
	return createPipeline(device, format, pipelineDesc{
		label:  "Sprites",
		code:   shaders.SpritesWGSL,
		layout: layout,
		buffers: []wgpu.VertexBufferLayout{
			{
				ArrayStride: uint64(unsafe.Sizeof(spriteInstance{})),
				StepMode:    wgpu.VertexStepModeInstance,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 1},
				},
			},
		},
		topology: wgpu.PrimitiveTopologyTriangleList,
		blend:    blendAlpha,
	})
}
