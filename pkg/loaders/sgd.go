package loaders

import (
	"errors"
	"fmt"

	"github.com/df07/go-sgd-bsdf/pkg/core"
	"github.com/df07/go-sgd-bsdf/pkg/material"
)

// SGDMaterialType is the material type name recognized by the loaders
const SGDMaterialType = "sgd"

// ErrNoSGDMaterial is returned when a file declares no usable SGD material
var ErrNoSGDMaterial = errors.New("no SGD material found")

// NamedSGD pairs a loaded material with the name it was declared under
type NamedSGD struct {
	Name     string
	Material *material.SGD
}

// sgdSpectrumParams lists the spectral parameter names in application order.
// The m_Kappa spelling is applied last so it wins over the kappa alias.
var sgdSpectrumParams = []struct {
	name  string
	field func(p *material.Params) *core.Spectrum
}{
	{"diffuseReflectance", func(p *material.Params) *core.Spectrum { return &p.DiffuseReflectance }},
	{"specularReflectance", func(p *material.Params) *core.Spectrum { return &p.SpecularReflectance }},
	{"alpha", func(p *material.Params) *core.Spectrum { return &p.Alpha }},
	{"p", func(p *material.Params) *core.Spectrum { return &p.P }},
	{"kappa", func(p *material.Params) *core.Spectrum { return &p.Kappa }},
	{"m_Kappa", func(p *material.Params) *core.Spectrum { return &p.Kappa }},
	{"F0", func(p *material.Params) *core.Spectrum { return &p.F0 }},
	{"F1", func(p *material.Params) *core.Spectrum { return &p.F1 }},
	{"lambda", func(p *material.Params) *core.Spectrum { return &p.Lambda }},
	{"c", func(p *material.Params) *core.Spectrum { return &p.C }},
	{"k", func(p *material.Params) *core.Spectrum { return &p.K }},
	{"theta0", func(p *material.Params) *core.Spectrum { return &p.Theta0 }},
}

// SGDParamsFromStatement builds SGD parameters from a material statement,
// starting from material.DefaultParams. Unknown parameters are ignored.
func SGDParamsFromStatement(stmt *PBRTStatement) (material.Params, error) {
	params := material.DefaultParams()

	for _, sp := range sgdSpectrumParams {
		value, ok, err := stmt.GetSpectrumParam(sp.name)
		if err != nil {
			return material.Params{}, err
		}
		if ok {
			*sp.field(&params) = value
		}
	}

	if _, exists := stmt.Parameters["roughness"]; exists {
		roughness, ok := stmt.GetFloatParam("roughness")
		if !ok {
			return material.Params{}, fmt.Errorf("invalid roughness value %v", stmt.Parameters["roughness"].Values)
		}
		params.Roughness = roughness
	}

	return params, nil
}

// materialType returns the material type a statement declares
func materialType(stmt *PBRTStatement) string {
	if stmt.Type == "MakeNamedMaterial" {
		t, _ := stmt.GetStringParam("type")
		return t
	}
	return stmt.Subtype
}

// BuildSGDMaterials creates every SGD material declared in a material file.
// Anonymous materials are named by an optional "string id" parameter or
// by their position. Materials of other types are skipped.
func BuildSGDMaterials(file *MaterialFile, logger core.Logger) ([]NamedSGD, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	var result []NamedSGD
	build := func(stmt *PBRTStatement, name string) error {
		if t := materialType(stmt); t != SGDMaterialType {
			logger.Printf("skipping material %q of type %q\n", name, t)
			return nil
		}
		params, err := SGDParamsFromStatement(stmt)
		if err != nil {
			return fmt.Errorf("material %q: %w", name, err)
		}
		m := material.NewSGD(params)
		m.ID = name
		result = append(result, NamedSGD{Name: name, Material: m})
		return nil
	}

	for i := range file.Materials {
		stmt := &file.Materials[i]
		name, ok := stmt.GetStringParam("id")
		if !ok {
			name = fmt.Sprintf("material_%d", i)
		}
		if err := build(stmt, name); err != nil {
			return nil, err
		}
	}
	for i := range file.NamedMaterials {
		stmt := &file.NamedMaterials[i]
		if err := build(stmt, stmt.Subtype); err != nil {
			return nil, err
		}
	}

	if len(result) == 0 {
		return nil, ErrNoSGDMaterial
	}
	return result, nil
}

// FindMaterial returns the material with the given name
func FindMaterial(materials []NamedSGD, name string) (*material.SGD, error) {
	for _, m := range materials {
		if m.Name == name {
			return m.Material, nil
		}
	}
	return nil, fmt.Errorf("material %q not found", name)
}
