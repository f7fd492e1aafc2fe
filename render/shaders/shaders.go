package shaders

import (
	_ "embed"
)

//go:embed points.wgsl
var PointsWGSL string

//go:embed lines.wgsl
var LinesWGSL string

//go:embed sprites.wgsl
var SpritesWGSL string
