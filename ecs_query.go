package blacksky

import (
	"reflect"
)

// Queries iterate every archetype holding all of their component types.
// Iteration order is unspecified; Map stops early when the callback returns false.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]       { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B] { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] {
	return Query3[A, B, C]{ecs: cmd.app.ecs}
}

func componentIdOf[T any](ecs *Ecs) componentId {
	return ecs.getComponentId(reflect.TypeOf((*T)(nil)).Elem())
}

func (q Query1[A]) Map(m func(EntityId, *A) bool) {
	id1 := componentIdOf[A](q.ecs)

	for _, arch := range q.ecs.archetypes {
		data1, ok := arch.componentData[id1]
		if !ok {
			continue
		}
		comps1 := data1.([]A)

		for entityId, r := range arch.entities {
			if !m(entityId, &comps1[r]) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool) {
	id1 := componentIdOf[A](q.ecs)
	id2 := componentIdOf[B](q.ecs)

	for _, arch := range q.ecs.archetypes {
		data1, ok1 := arch.componentData[id1]
		data2, ok2 := arch.componentData[id2]
		if !ok1 || !ok2 {
			continue
		}
		comps1, comps2 := data1.([]A), data2.([]B)

		for entityId, r := range arch.entities {
			if !m(entityId, &comps1[r], &comps2[r]) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool) {
	id1 := componentIdOf[A](q.ecs)
	id2 := componentIdOf[B](q.ecs)
	id3 := componentIdOf[C](q.ecs)

	for _, arch := range q.ecs.archetypes {
		data1, ok1 := arch.componentData[id1]
		data2, ok2 := arch.componentData[id2]
		data3, ok3 := arch.componentData[id3]
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		comps1, comps2, comps3 := data1.([]A), data2.([]B), data3.([]C)

		for entityId, r := range arch.entities {
			if !m(entityId, &comps1[r], &comps2[r], &comps3[r]) {
				return
			}
		}
	}
}

// GetComponent returns a pointer to the T component of entityId, valid until the next flush.
func GetComponent[T any](cmd *Commands, entityId EntityId) (*T, bool) {
	ecs := cmd.app.ecs
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil, false
	}
	arch := ecs.archetypes[archId]
	data, ok := arch.componentData[componentIdOf[T](ecs)]
	if !ok {
		return nil, false
	}
	return &data.([]T)[arch.entities[entityId]], true
}
