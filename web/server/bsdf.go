package server

import (
	"math"
	"net/http"
	"net/url"

	"github.com/df07/go-sgd-bsdf/pkg/core"
	"github.com/df07/go-sgd-bsdf/pkg/estimator"
	"github.com/df07/go-sgd-bsdf/pkg/material"
)

// EvaluateResponse is the JSON body of /api/evaluate
type EvaluateResponse struct {
	Wi    [3]float64    `json:"wi"`
	Wo    [3]float64    `json:"wo"`
	Value core.Spectrum `json:"value"`
	PDF   float64       `json:"pdf"`
}

// SampleResponse is the JSON body of /api/sample
type SampleResponse struct {
	Wi        [3]float64    `json:"wi"`
	Wo        [3]float64    `json:"wo"`
	Weight    core.Spectrum `json:"weight"`
	PDF       float64       `json:"pdf"`
	Component int           `json:"component"`
	Type      string        `json:"type"`
}

// EstimateResponse is one albedo estimate
type EstimateResponse struct {
	Mean    core.Spectrum `json:"mean"`
	StdErr  core.Spectrum `json:"stdErr"`
	Samples int           `json:"samples"`
	Zero    int           `json:"zero"`
}

// AlbedoResponse is the JSON body of /api/albedo
type AlbedoResponse struct {
	ThetaI     float64          `json:"thetaI"`
	Importance EstimateResponse `json:"importance"`
	Uniform    EstimateResponse `json:"uniform"`
}

// MaterialResponse describes the material a request resolves to
type MaterialResponse struct {
	MaterialType string                 `json:"materialType"`
	Description  string                 `json:"description"`
	Properties   map[string]interface{} `json:"properties"`
}

// parseMaterial builds an SGD from the diffuse, specular and roughness
// query parameters, keeping defaults for everything else
func parseMaterial(values url.Values) (*material.SGD, error) {
	params := material.DefaultParams()

	diffuse, err := parseFloatParam(values, "diffuse", params.DiffuseReflectance[0], 0, 1)
	if err != nil {
		return nil, err
	}
	specular, err := parseFloatParam(values, "specular", params.SpecularReflectance[0], 0, 10)
	if err != nil {
		return nil, err
	}
	roughness, err := parseFloatParam(values, "roughness", params.Roughness, 0.001, 2)
	if err != nil {
		return nil, err
	}

	params.DiffuseReflectance = core.SpectrumFromScalar(diffuse)
	params.SpecularReflectance = core.SpectrumFromScalar(specular)
	params.Roughness = roughness

	m := material.NewSGD(params)
	m.ID = "query"
	return m, nil
}

// parseDirection reads a direction given as polar and azimuthal angles in degrees
func parseDirection(values url.Values, thetaKey, phiKey string, defaultTheta float64) (core.Vec3, error) {
	theta, err := parseFloatParam(values, thetaKey, defaultTheta, 0, 180)
	if err != nil {
		return core.Vec3{}, err
	}
	phi, err := parseFloatParam(values, phiKey, 0, 0, 360)
	if err != nil {
		return core.Vec3{}, err
	}
	return core.SphericalDirection(theta*math.Pi/180, phi*math.Pi/180), nil
}

func parseComponent(values url.Values) (int, error) {
	return parseIntParam(values, "component", material.AllComponents, material.AllComponents, material.ComponentDiffuse)
}

func toArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// extractMaterialInfo lists the material parameters for display
func extractMaterialInfo(m *material.SGD) MaterialResponse {
	p := m.Params()
	properties := map[string]interface{}{
		"diffuseReflectance":     p.DiffuseReflectance,
		"specularReflectance":    p.SpecularReflectance,
		"alpha":                  p.Alpha,
		"p":                      p.P,
		"kappa":                  p.Kappa,
		"F0":                     p.F0,
		"F1":                     p.F1,
		"lambda":                 p.Lambda,
		"c":                      p.C,
		"k":                      p.K,
		"theta0":                 p.Theta0,
		"roughness":              p.Roughness,
		"specularSamplingWeight": m.SpecularSamplingWeight(),
	}
	return MaterialResponse{
		MaterialType: "sgd",
		Description:  m.String(),
		Properties:   properties,
	}
}

// handleMaterial reports the parameters of the requested material
func (s *Server) handleMaterial(w http.ResponseWriter, r *http.Request) {
	m, err := parseMaterial(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid material parameters: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, extractMaterialInfo(m))
}

// handleEvaluate evaluates the model and its density for one direction pair
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	m, err := parseMaterial(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid material parameters: "+err.Error())
		return
	}
	wi, err := parseDirection(values, "thetaI", "phiI", 30)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	wo, err := parseDirection(values, "thetaO", "phiO", 30)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	component, err := parseComponent(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := material.NewQuery(wi, wo).WithComponent(component)
	writeJSON(w, http.StatusOK, EvaluateResponse{
		Wi:    toArray(wi),
		Wo:    toArray(wo),
		Value: m.Evaluate(q, material.SolidAngle),
		PDF:   m.PDF(q, material.SolidAngle),
	})
}

// handleSample draws one outgoing direction from a caller supplied sample point
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	m, err := parseMaterial(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid material parameters: "+err.Error())
		return
	}
	wi, err := parseDirection(values, "thetaI", "phiI", 30)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	component, err := parseComponent(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u1, err := parseFloatParam(values, "u1", 0.5, 0, 0.999999)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u2, err := parseFloatParam(values, "u2", 0.5, 0, 0.999999)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := material.NewQuery(wi, core.Vec3{}).WithComponent(component)
	result := m.Sample(q, core.NewVec2(u1, u2))

	response := SampleResponse{
		Wi:        toArray(wi),
		Wo:        toArray(result.Wo),
		Weight:    result.Weight,
		PDF:       result.PDF,
		Component: result.SampledComponent,
		Type:      "none",
	}
	switch result.SampledType {
	case material.GlossyReflection:
		response.Type = "glossy"
	case material.DiffuseReflection:
		response.Type = "diffuse"
	}
	writeJSON(w, http.StatusOK, response)
}

// handleAlbedo compares importance sampled and uniform albedo estimates
func (s *Server) handleAlbedo(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	m, err := parseMaterial(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid material parameters: "+err.Error())
		return
	}
	thetaI, err := parseFloatParam(values, "thetaI", 30, 0, 89.9)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	samples, err := parseIntParam(values, "samples", 10000, 1, 1000000)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Use request context to stop work when the client disconnects
	ctx := r.Context()
	wi := core.SphericalDirection(thetaI*math.Pi/180, 0)

	importance, err := s.estimator.ImportanceAlbedo(ctx, m, wi, samples)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	uniform, err := s.estimator.UniformAlbedo(ctx, m, wi, samples)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, AlbedoResponse{
		ThetaI:     thetaI,
		Importance: toEstimateResponse(importance),
		Uniform:    toEstimateResponse(uniform),
	})
}

func toEstimateResponse(e estimator.Estimate) EstimateResponse {
	return EstimateResponse{
		Mean:    e.Mean,
		StdErr:  e.StdErr,
		Samples: e.Samples,
		Zero:    e.Zero,
	}
}
