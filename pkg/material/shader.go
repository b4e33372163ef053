package material

import (
	"fmt"
	"strings"
)

// PreviewShader is the real-time preview stand-in for an SGD material.
// The model has no GLSL approximation, so it renders as a black box.
type PreviewShader struct {
	material *SGD
}

// PreviewShader returns the preview shader for this material
func (s *SGD) PreviewShader() *PreviewShader {
	return &PreviewShader{material: s}
}

// Transparent reports that the preview should not occlude what is behind it
func (ps *PreviewShader) Transparent() bool {
	return true
}

// GenerateCode emits the combined and diffuse-only GLSL evaluation functions
// named after evalName. Both return zero; depNames is unused because the
// stub has no texture inputs.
func (ps *PreviewShader) GenerateCode(evalName string, depNames []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "vec3 %s(vec2 uv, vec3 wi, vec3 wo) {\n", evalName)
	sb.WriteString("    return vec3(0.0);\n")
	sb.WriteString("}\n")
	fmt.Fprintf(&sb, "vec3 %s_diffuse(vec2 uv, vec3 wi, vec3 wo) {\n", evalName)
	sb.WriteString("    return vec3(0.0);\n")
	sb.WriteString("}\n")
	return sb.String()
}
