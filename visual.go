package blacksky

import (
	"errors"
	"fmt"
)

var (
	ErrContainerAbsent     = errors.New("container absent")
	ErrRendererUnavailable = errors.New("renderer unavailable")
)

const KindGalaxy = "galaxy"

// VisualInstanceComponent marks one self-contained 3D element drawn into its
// own container.
type VisualInstanceComponent struct {
	Name      string
	Container string
	Kind      string
}

type CameraComponent struct {
	FovY     float32 // degrees
	Near     float32
	Far      float32
	Distance float32
}

type ViewportComponent struct {
	Rect Rect
}

// PointsComponent draws a point field asset. PointSize is in world units and
// attenuates with distance.
type PointsComponent struct {
	Field     AssetId
	Count     int
	PointSize float32
	Opacity   float32
	Additive  bool
}

type WireframeComponent struct {
	Mesh    AssetId
	Color   [3]float32
	Opacity float32
}

// VisualDef describes a visual instance to spawn.
type VisualDef struct {
	Name      string          `toml:"name" yaml:"name"`
	Container string          `toml:"container" yaml:"container"`
	Kind      string          `toml:"kind" yaml:"kind"`
	Count     int             `toml:"count" yaml:"count"`
	Shape     GalaxyShape     `toml:"shape" yaml:"shape"`
	Primitive PrimitiveParams `toml:"primitive" yaml:"primitive"`

	SpinX    float64    `toml:"spin_x" yaml:"spin_x"`
	SpinY    float64    `toml:"spin_y" yaml:"spin_y"`
	Distance float32    `toml:"camera_distance" yaml:"camera_distance"`
	FovY     float32    `toml:"fov" yaml:"fov"`
	Size     float32    `toml:"point_size" yaml:"point_size"`
	Opacity  float32    `toml:"opacity" yaml:"opacity"`
	Color    [3]float32 `toml:"color" yaml:"color"`
	Tilt     bool       `toml:"tilt" yaml:"tilt"`
}

func DefaultGalaxyDef() VisualDef {
	return VisualDef{
		Name:      KindGalaxy,
		Container: GalaxyContainer,
		Kind:      KindGalaxy,
		Count:     5000,
		Shape:     DefaultGalaxyShape(),
		SpinX:     0.001,
		SpinY:     0.002,
		Distance:  8,
		FovY:      75,
		Size:      0.02,
		Opacity:   0.8,
	}
}

func DefaultShapeDef(name, container string, kind PrimitiveKind) VisualDef {
	return VisualDef{
		Name:      name,
		Container: container,
		Kind:      string(kind),
		Primitive: DefaultPrimitiveParams(kind),
		SpinX:     0.01,
		SpinY:     0.01,
		Distance:  2,
		FovY:      75,
		Opacity:   0.3,
		Color:     [3]float32{1, 1, 1},
		Tilt:      true,
	}
}

// withDefaults fills the camera and point size a scene file may leave out.
// Counts, colours and opacity are taken as written: zero is meaningful.
func (def VisualDef) withDefaults() VisualDef {
	if def.Distance <= 0 {
		def.Distance = 2
		if def.Kind == KindGalaxy {
			def.Distance = 8
		}
	}
	if def.FovY <= 0 {
		def.FovY = 75
	}
	if def.Kind == KindGalaxy && def.Size <= 0 {
		def.Size = 0.02
	}
	return def
}

// DefaultVisualDefs is the galaxy plus a cube, sphere and torus in the three
// section containers.
func DefaultVisualDefs() []VisualDef {
	return []VisualDef{
		DefaultGalaxyDef(),
		DefaultShapeDef("cube", "opening", PrimitiveCube),
		DefaultShapeDef("sphere", "mind", PrimitiveSphere),
		DefaultShapeDef("torus", "creations", PrimitiveTorus),
	}
}

// SpawnVisual generates the geometry for def and queues its entity. A missing
// container yields ErrContainerAbsent and creates nothing. A galaxy with a zero
// count is a valid, empty instance.
func SpawnVisual(cmd *Commands, assets *AssetServer, page *Page, rng Source, def VisualDef) (EntityId, error) {
	rect, ok := page.Container(def.Container)
	if !ok {
		return 0, fmt.Errorf("visual %q: %w: %q", def.Name, ErrContainerAbsent, def.Container)
	}

	fov := def.FovY
	if fov <= 0 {
		fov = 75
	}
	tr := NewTransform()
	components := []any{
		VisualInstanceComponent{Name: def.Name, Container: def.Container, Kind: def.Kind},
		CameraComponent{FovY: fov, Near: 0.1, Far: 1000, Distance: def.Distance},
		ViewportComponent{Rect: rect},
		tr,
		SpinComponent{IncrementX: def.SpinX, IncrementY: def.SpinY},
	}

	if def.Kind == KindGalaxy {
		shape := def.Shape
		if shape == (GalaxyShape{}) {
			shape = DefaultGalaxyShape()
		}
		field := shape.Generate(def.Count, rng)
		components = append(components, PointsComponent{
			Field:     assets.AddPointField(field),
			Count:     field.Len(),
			PointSize: def.Size,
			Opacity:   def.Opacity,
			Additive:  true,
		})
	} else {
		mesh, err := BuildPrimitive(PrimitiveKind(def.Kind), def.Primitive)
		if err != nil {
			return 0, fmt.Errorf("visual %q: %w", def.Name, err)
		}
		components = append(components, WireframeComponent{
			Mesh:    assets.AddWireMesh(mesh),
			Color:   def.Color,
			Opacity: def.Opacity,
		})
	}
	if def.Tilt {
		components = append(components, TiltComponent{})
	}

	eid := cmd.AddEntity(components...)
	cmd.Logger().Debugf("Spawned visual %q (%s) as entity %v in %q", def.Name, def.Kind, eid, def.Container)
	return eid, nil
}

// DestroyVisual releases the instance's geometry and removes it.
func DestroyVisual(cmd *Commands, assets *AssetServer, eid EntityId) {
	if points, ok := GetComponent[PointsComponent](cmd, eid); ok {
		assets.Release(points.Field)
	}
	if wire, ok := GetComponent[WireframeComponent](cmd, eid); ok {
		assets.Release(wire.Mesh)
	}
	cmd.RemoveEntity(eid)
}
