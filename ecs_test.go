package blacksky

import (
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcs_MakeEcs(t *testing.T) {
	ecs := MakeEcs()

	assert.Empty(t, ecs.archetypes)
	assert.Empty(t, ecs.entityIndex)
	assert.Equal(t, EntityId(0), ecs.entityIdCounter)
	assert.Equal(t, componentId(0), ecs.componentIdCounter)
}

func TestEcs_AddEntity(t *testing.T) {
	ecs := MakeEcs()

	bare := ecs.addEntity()
	spinning := ecs.addEntity(SpinComponent{IncrementX: 0.01})

	assert.True(t, ecs.hasEntity(bare))
	assert.True(t, ecs.hasEntity(spinning))
	assert.NotEqual(t, ecs.entityIndex[bare], ecs.entityIndex[spinning],
		"entities with different components share an archetype")
}

func TestEcs_AddComponents(t *testing.T) {
	ecs := MakeEcs()
	eid := ecs.addEntity(SpinComponent{IncrementY: 0.02})

	ecs.addComponents(eid, NewTransform(), VisualInstanceComponent{})
	ecs.addComponents(eid, &ViewportComponent{})

	arch := ecs.archetypes[ecs.entityIndex[eid]]
	assert.Len(t, arch.componentData, 4)

	spin := reflectSliceGet(arch.componentData[componentIdOf[SpinComponent](&ecs)], int(arch.entities[eid])).Interface()
	assert.Equal(t, 0.02, spin.(SpinComponent).IncrementY, "existing components survive the move")
}

func TestEcs_AddComponentsOverwrites(t *testing.T) {
	ecs := MakeEcs()
	eid := ecs.addEntity(SpinComponent{IncrementX: 1})
	before := ecs.entityIndex[eid]

	ecs.addComponents(eid, SpinComponent{IncrementX: 2})

	assert.Equal(t, before, ecs.entityIndex[eid])
	arch := ecs.archetypes[before]
	spins := arch.componentData[componentIdOf[SpinComponent](&ecs)].([]SpinComponent)
	assert.Equal(t, 2.0, spins[arch.entities[eid]].IncrementX)
}

func TestEcs_AddInvalidComponentShouldPanic(t *testing.T) {
	ecs := MakeEcs()
	assert.Panics(t, func() { ecs.addEntity(123) })
}

func TestEcs_ComponentRegistration(t *testing.T) {
	ecs := MakeEcs()
	id1 := ecs.getComponentId(reflect.TypeOf(TransformComponent{}))
	id2 := ecs.getComponentId(reflect.TypeOf(TransformComponent{}))

	assert.Equal(t, id1, id2)
	assert.Equal(t, reflect.TypeOf(TransformComponent{}), ecs.getComponentType(id1))
	assert.Panics(t, func() { ecs.getComponentType(id1 + 1) })
}

func TestEcs_ArchetypeKey(t *testing.T) {
	assert.Equal(t, archetypeKey{1, 2, 3}, dedupAndSortArchetypeKey(archetypeKey{3, 1, 2, 1, 3}))
	assert.Equal(t, getArchetypeId(archetypeKey{1, 2}), getArchetypeId(dedupAndSortArchetypeKey(archetypeKey{2, 1, 2})))
	assert.NotEqual(t, getArchetypeId(archetypeKey{1, 2}), getArchetypeId(archetypeKey{1, 3}))
}

func TestEcs_RemoveEntity(t *testing.T) {
	ecs := MakeEcs()
	eid := ecs.addEntity(NewTransform())
	ecs.removeEntity(eid)

	assert.False(t, ecs.hasEntity(eid))
}

func TestEcs_RecycleRow(t *testing.T) {
	ecs := MakeEcs()
	first := ecs.addEntity(TransformComponent{Position: mgl32.Vec3{1, 2, 3}})
	arch := ecs.archetypes[ecs.entityIndex[first]]
	r := arch.entities[first]

	ecs.removeEntity(first)
	require.Equal(t, []row{r}, arch.recycled)
	transforms := arch.componentData[componentIdOf[TransformComponent](&ecs)].([]TransformComponent)
	assert.Equal(t, TransformComponent{}, transforms[r], "removed rows are zeroed")

	second := ecs.addEntity(NewTransform())
	assert.NotEqual(t, first, second, "entity ids are never reused")
	assert.Equal(t, r, arch.entities[second])
	assert.Empty(t, arch.recycled)
}

func TestReflectSlice(t *testing.T) {
	slice := reflectSliceMake(reflect.TypeOf(SpinTarget{}))
	slice = reflectSliceAppend(slice, reflect.ValueOf(SpinTarget{AngleX: 1}))
	slice = reflectSliceAppend(slice, reflect.ValueOf(SpinTarget{AngleX: 2}))
	reflectSliceSet(slice, 0, reflect.ValueOf(SpinTarget{AngleY: 5}))

	targets := slice.([]SpinTarget)
	require.Len(t, targets, 2)
	assert.Equal(t, SpinTarget{AngleY: 5}, reflectSliceGet(slice, 0).Interface())
	assert.Equal(t, 2.0, targets[1].AngleX)
}
