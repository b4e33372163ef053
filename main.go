package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-sgd-bsdf/pkg/core"
	"github.com/df07/go-sgd-bsdf/pkg/estimator"
	"github.com/df07/go-sgd-bsdf/pkg/loaders"
	"github.com/df07/go-sgd-bsdf/pkg/material"
)

func main() {
	// Parse command line flags
	materialPath := flag.String("material", "", "Material file (.pbrt, .gltf or .glb); built-in defaults if empty")
	name := flag.String("name", "", "Material name to select from the file (first SGD material if empty)")
	loadPath := flag.String("load", "", "Load a binary material record instead of -material")
	savePath := flag.String("save", "", "Save the selected material as a binary record")
	exportPath := flag.String("export", "", "Export the selected material as a .gltf document")
	thetas := flag.String("theta", "0,30,60,80", "Comma separated incident angles in degrees")
	samples := flag.Int("samples", 100000, "Monte Carlo samples per estimate")
	workers := flag.Int("workers", 0, "Number of parallel workers (0 = auto-detect CPU count)")
	seed := flag.Int64("seed", 42, "Random seed")
	shader := flag.Bool("shader", false, "Print the preview shader stub")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("SGD BSDF explorer")
		fmt.Println("Usage: sgd [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Prints the material and an albedo table comparing importance")
		fmt.Println("sampling against uniform hemisphere sampling.")
		return
	}

	angles, err := parseAngles(*thetas)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	var m *material.SGD
	if *loadPath != "" {
		m, err = loadRecord(*loadPath)
	} else {
		m, err = loadMaterial(*materialPath, *name)
	}
	if err != nil {
		fmt.Printf("Error loading material: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(m)

	if *shader {
		fmt.Println()
		fmt.Println(m.PreviewShader().GenerateCode("sgd_eval", nil))
	}

	if *savePath != "" {
		if err := saveRecord(*savePath, m); err != nil {
			fmt.Printf("Error saving material: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Material saved as %s\n", *savePath)
	}

	if *exportPath != "" {
		if err := exportGLTF(*exportPath, m); err != nil {
			fmt.Printf("Error exporting material: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Material exported as %s\n", *exportPath)
	}

	est := estimator.New(estimator.Config{
		Workers: *workers,
		Seed:    *seed,
		Logger:  log.Default(),
	})
	defer est.Close()

	fmt.Println()
	startTime := time.Now()
	if err := printAlbedoTable(context.Background(), os.Stdout, est, m, angles, *samples); err != nil {
		fmt.Printf("Error estimating albedo: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Estimates completed in %v\n", time.Since(startTime))
}

// parseAngles parses a comma separated list of incident angles in degrees
func parseAngles(s string) ([]float64, error) {
	var angles []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		deg, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid angle %q: %w", field, err)
		}
		if deg < 0 || deg >= 90 {
			return nil, fmt.Errorf("angle %g must be in [0, 90)", deg)
		}
		angles = append(angles, deg)
	}
	if len(angles) == 0 {
		return nil, fmt.Errorf("no incident angles given")
	}
	return angles, nil
}

// loadMaterial loads the named material from a PBRT or glTF file, or
// returns the default material when no path is given
func loadMaterial(path, name string) (*material.SGD, error) {
	if path == "" {
		m := material.NewDefaultSGD()
		m.ID = "default"
		return m, nil
	}

	var materials []loaders.NamedSGD
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pbrt":
		file, err := loaders.LoadMaterials(path)
		if err != nil {
			return nil, err
		}
		materials, err = loaders.BuildSGDMaterials(file, log.Default())
		if err != nil {
			return nil, err
		}
	case ".gltf", ".glb":
		var err error
		materials, err = loaders.LoadGLTFMaterials(path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported material file %q", path)
	}

	if name == "" {
		return materials[0].Material, nil
	}
	return loaders.FindMaterial(materials, name)
}

func loadRecord(path string) (*material.SGD, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record: %w", err)
	}
	defer file.Close()

	m, err := material.ReadSGD(file)
	if err != nil {
		return nil, err
	}
	m.ID = filepath.Base(path)
	return m, nil
}

func saveRecord(path string, m *material.SGD) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create record: %w", err)
	}
	if _, err := m.WriteTo(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func exportGLTF(path string, m *material.SGD) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create glTF file: %w", err)
	}
	name := m.ID
	if name == "" {
		name = "sgd"
	}
	if err := loaders.EncodeGLTFMaterials(file, []loaders.NamedSGD{{Name: name, Material: m}}); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// printAlbedoTable writes one row per incident angle with the importance
// sampled and uniformly sampled albedo estimates
func printAlbedoTable(ctx context.Context, w io.Writer, est *estimator.Estimator, m material.BSDF, angles []float64, samples int) error {
	fmt.Fprintf(w, "%-8s %-36s %-36s %s\n", "theta", "importance", "uniform", "zero")
	for _, deg := range angles {
		wi := core.SphericalDirection(deg*math.Pi/180, 0)

		importance, err := est.ImportanceAlbedo(ctx, m, wi, samples)
		if err != nil {
			return err
		}
		uniform, err := est.UniformAlbedo(ctx, m, wi, samples)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "%-8.1f %-36v %-36v %d/%d\n",
			deg, importance.Mean, uniform.Mean, importance.Zero, importance.Samples)
	}
	return nil
}
