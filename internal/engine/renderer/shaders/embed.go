// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// SceneVertexShader transforms lit geometry.
//
//go:embed scene.vert
var SceneVertexShader string

// SceneFragmentShader shades metallic-roughness surfaces with tone mapping.
//
//go:embed scene.frag
var SceneFragmentShader string

// DepthVertexShader renders the shadow map depth pass.
//
//go:embed depth.vert
var DepthVertexShader string

// DepthFragmentShader is the empty fragment stage of the depth pass.
//
//go:embed depth.frag
var DepthFragmentShader string
