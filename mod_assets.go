package blacksky

import (
	"sort"

	"github.com/google/uuid"
)

type AssetId string

// AssetServer owns generated geometry. Point fields and wireframe meshes are
// immutable once added; renderers cache their GPU copies by AssetId and drop
// them when the id shows up in TakeReleased.
type AssetServer struct {
	pointFields map[AssetId]*PointField
	wireMeshes  map[AssetId]*WireMesh
	released    []AssetId
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewAssetServer())
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		pointFields: make(map[AssetId]*PointField),
		wireMeshes:  make(map[AssetId]*WireMesh),
	}
}

func (server *AssetServer) AddPointField(field *PointField) AssetId {
	id := makeAssetId()
	server.pointFields[id] = field
	return id
}

func (server *AssetServer) AddWireMesh(mesh *WireMesh) AssetId {
	id := makeAssetId()
	server.wireMeshes[id] = mesh
	return id
}

func (server *AssetServer) PointField(id AssetId) (*PointField, bool) {
	f, ok := server.pointFields[id]
	return f, ok
}

func (server *AssetServer) WireMesh(id AssetId) (*WireMesh, bool) {
	m, ok := server.wireMeshes[id]
	return m, ok
}

// Release forgets an asset. Unknown ids are ignored.
func (server *AssetServer) Release(id AssetId) {
	_, isField := server.pointFields[id]
	_, isMesh := server.wireMeshes[id]
	if !isField && !isMesh {
		return
	}
	delete(server.pointFields, id)
	delete(server.wireMeshes, id)
	server.released = append(server.released, id)
}

// TakeReleased returns and clears the ids released since the last call.
func (server *AssetServer) TakeReleased() []AssetId {
	out := server.released
	server.released = nil
	return out
}

// Ids returns every live asset id, sorted.
func (server *AssetServer) Ids() []AssetId {
	ids := make([]AssetId, 0, len(server.pointFields)+len(server.wireMeshes))
	for id := range server.pointFields {
		ids = append(ids, id)
	}
	for id := range server.wireMeshes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
