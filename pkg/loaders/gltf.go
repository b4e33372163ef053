package loaders

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"

	"github.com/df07/go-sgd-bsdf/pkg/core"
	"github.com/df07/go-sgd-bsdf/pkg/material"
)

// ExtensionName is the glTF material extension carrying SGD parameters
const ExtensionName = "EXT_materials_sgd"

// SGDExtension is the JSON body of the EXT_materials_sgd material extension.
// Missing fields keep their material.DefaultParams values.
type SGDExtension struct {
	DiffuseReflectance  core.Spectrum `json:"diffuseReflectance"`
	SpecularReflectance core.Spectrum `json:"specularReflectance"`
	Alpha               core.Spectrum `json:"alpha"`
	P                   core.Spectrum `json:"p"`
	Kappa               core.Spectrum `json:"kappa"`
	F0                  core.Spectrum `json:"F0"`
	F1                  core.Spectrum `json:"F1"`
	Lambda              core.Spectrum `json:"lambda"`
	C                   core.Spectrum `json:"c"`
	K                   core.Spectrum `json:"k"`
	Theta0              core.Spectrum `json:"theta0"`
	Roughness           float64       `json:"roughness"`
}

func init() {
	gltf.RegisterExtension(ExtensionName, unmarshalSGDExtension)
}

func unmarshalSGDExtension(data []byte) (any, error) {
	ext := newSGDExtension(material.DefaultParams())
	if err := json.Unmarshal(data, ext); err != nil {
		return nil, fmt.Errorf("invalid %s extension: %w", ExtensionName, err)
	}
	return ext, nil
}

func newSGDExtension(p material.Params) *SGDExtension {
	return &SGDExtension{
		DiffuseReflectance:  p.DiffuseReflectance,
		SpecularReflectance: p.SpecularReflectance,
		Alpha:               p.Alpha,
		P:                   p.P,
		Kappa:               p.Kappa,
		F0:                  p.F0,
		F1:                  p.F1,
		Lambda:              p.Lambda,
		C:                   p.C,
		K:                   p.K,
		Theta0:              p.Theta0,
		Roughness:           p.Roughness,
	}
}

// Params converts the extension to model parameters
func (e *SGDExtension) Params() material.Params {
	return material.Params{
		DiffuseReflectance:  e.DiffuseReflectance,
		SpecularReflectance: e.SpecularReflectance,
		Alpha:               e.Alpha,
		P:                   e.P,
		Kappa:               e.Kappa,
		F0:                  e.F0,
		F1:                  e.F1,
		Lambda:              e.Lambda,
		C:                   e.C,
		K:                   e.K,
		Theta0:              e.Theta0,
		Roughness:           e.Roughness,
	}
}

// LoadGLTFMaterials opens a .gltf or .glb file and returns its materials as SGD models
func LoadGLTFMaterials(path string) ([]NamedSGD, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	return gltfMaterials(doc)
}

// DecodeGLTFMaterials decodes a glTF document from r and returns its materials.
// The document must not reference external buffers.
func DecodeGLTFMaterials(r io.Reader) ([]NamedSGD, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltf decode: %w", err)
	}
	return gltfMaterials(doc)
}

// gltfMaterials converts every document material. Materials without the
// extension fall back to baseColorFactor for the diffuse lobe and
// roughnessFactor for the sampling roughness.
func gltfMaterials(doc *gltf.Document) ([]NamedSGD, error) {
	if len(doc.Materials) == 0 {
		return nil, ErrNoSGDMaterial
	}

	result := make([]NamedSGD, 0, len(doc.Materials))
	for i, gm := range doc.Materials {
		name := gm.Name
		if name == "" {
			name = fmt.Sprintf("gltf_material_%d", i)
		}

		params, err := gltfMaterialParams(gm)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}

		m := material.NewSGD(params)
		m.ID = name
		result = append(result, NamedSGD{Name: name, Material: m})
	}
	return result, nil
}

func gltfMaterialParams(gm *gltf.Material) (material.Params, error) {
	if raw, ok := gm.Extensions[ExtensionName]; ok {
		switch ext := raw.(type) {
		case *SGDExtension:
			return ext.Params(), nil
		case json.RawMessage:
			decoded, err := unmarshalSGDExtension(ext)
			if err != nil {
				return material.Params{}, err
			}
			return decoded.(*SGDExtension).Params(), nil
		default:
			return material.Params{}, fmt.Errorf("unexpected %s extension value %T", ExtensionName, raw)
		}
	}

	params := material.DefaultParams()
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		params.DiffuseReflectance = core.NewSpectrum(cf[0], cf[1], cf[2])
		params.Roughness = pbr.RoughnessFactorOrDefault()
	}
	return params, nil
}

// EncodeGLTFMaterials writes the materials to w as a JSON glTF document.
// Each material carries the full extension plus a metallic-roughness
// approximation for viewers without SGD support.
func EncodeGLTFMaterials(w io.Writer, materials []NamedSGD) error {
	doc := &gltf.Document{
		Asset:          gltf.Asset{Version: "2.0", Generator: "go-sgd-bsdf"},
		ExtensionsUsed: []string{ExtensionName},
	}

	for _, nm := range materials {
		p := nm.Material.Params()
		roughness := p.Roughness
		metallic := 0.0
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: nm.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{
					p.DiffuseReflectance[0], p.DiffuseReflectance[1], p.DiffuseReflectance[2], 1,
				},
				MetallicFactor:  &metallic,
				RoughnessFactor: &roughness,
			},
			Extensions: gltf.Extensions{ExtensionName: newSGDExtension(p)},
		})
	}

	enc := gltf.NewEncoder(w)
	enc.AsBinary = false
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("gltf encode: %w", err)
	}
	return nil
}
