package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-sgd-bsdf/pkg/core"
)

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type       string               // Statement type (Material, MakeNamedMaterial, ...)
	Subtype    string               // Subtype (material type, or the name for MakeNamedMaterial)
	Parameters map[string]PBRTParam // Named parameters
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, spectrum, string, ...)
	Values []string // Parameter values as strings
}

// MaterialFile contains the material declarations found in a PBRT file.
// Every other statement is accepted and ignored.
type MaterialFile struct {
	Materials      []PBRTStatement // Material statements in file order
	NamedMaterials []PBRTStatement // MakeNamedMaterial statements in file order
}

// PBRTParser encapsulates the state and logic for parsing PBRT files
type PBRTParser struct {
	file           *MaterialFile
	attributeDepth int
	statementLines []string
}

// ParseMaterials parses PBRT material declarations from an io.Reader
func ParseMaterials(reader io.Reader) (*MaterialFile, error) {
	parser := NewPBRTParser()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, err
		}
	}

	if err := parser.finalize(); err != nil {
		return nil, err
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	return parser.file, nil
}

// LoadMaterials loads and parses a PBRT material file
func LoadMaterials(filename string) (*MaterialFile, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PBRT file: %w", err)
	}
	defer file.Close()

	return ParseMaterials(file)
}

// NewPBRTParser creates a new PBRT parser instance
func NewPBRTParser() *PBRTParser {
	return &PBRTParser{
		file: &MaterialFile{
			Materials:      make([]PBRTStatement, 0),
			NamedMaterials: make([]PBRTStatement, 0),
		},
		statementLines: make([]string, 0),
	}
}

// processAccumulatedStatement processes any accumulated statement lines and clears them
func (p *PBRTParser) processAccumulatedStatement(context string) error {
	if len(p.statementLines) > 0 {
		fullStatement := strings.Join(p.statementLines, " ")
		stmt, err := parseStatement(fullStatement)
		if err != nil {
			return fmt.Errorf("error parsing statement %s '%s': %w", context, fullStatement, err)
		}
		p.routeStatement(stmt)
		p.statementLines = nil
	}
	return nil
}

// processLine processes a single line of PBRT input
func (p *PBRTParser) processLine(line string) error {
	line = strings.TrimSpace(line)

	// Skip empty lines and comments
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	// Block directives carry no parameters
	switch line {
	case "WorldBegin", "WorldEnd":
		return p.processAccumulatedStatement("before " + line)
	case "AttributeBegin":
		if err := p.processAccumulatedStatement("before AttributeBegin"); err != nil {
			return err
		}
		p.attributeDepth++
		return nil
	case "AttributeEnd":
		if err := p.processAccumulatedStatement("before AttributeEnd"); err != nil {
			return err
		}
		if p.attributeDepth == 0 {
			return fmt.Errorf("unmatched AttributeEnd")
		}
		p.attributeDepth--
		return nil
	}

	// Check if this line starts a new statement or continues the previous one
	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(""); err != nil {
			return err
		}
		p.statementLines = []string{line}
	} else {
		if len(p.statementLines) == 0 {
			return fmt.Errorf("unexpected continuation line: %s", line)
		}
		p.statementLines = append(p.statementLines, line)
	}

	return nil
}

// finalize processes any remaining accumulated statements
func (p *PBRTParser) finalize() error {
	if err := p.processAccumulatedStatement("at end of file"); err != nil {
		return err
	}
	if p.attributeDepth != 0 {
		return fmt.Errorf("%d unclosed AttributeBegin block(s)", p.attributeDepth)
	}
	return nil
}

// routeStatement keeps material declarations and drops everything else
func (p *PBRTParser) routeStatement(stmt *PBRTStatement) {
	switch stmt.Type {
	case "Material":
		p.file.Materials = append(p.file.Materials, *stmt)
	case "MakeNamedMaterial":
		p.file.NamedMaterials = append(p.file.NamedMaterials, *stmt)
	}
}

// validateFilePath validates a file path for security issues
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".pbrt") {
		return fmt.Errorf("invalid file type: only .pbrt files are allowed")
	}

	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	return nil
}

// tokenizePBRT tokenizes a PBRT line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	for _, char := range line {
		switch char {
		case '"':
			if !inBrackets {
				current.WriteRune(char)
				if inQuotes {
					// End of quoted string
					tokens = append(tokens, current.String())
					current.Reset()
					inQuotes = false
				} else {
					inQuotes = true
				}
			} else {
				current.WriteRune(char)
			}
		case '[':
			if !inQuotes {
				if current.Len() > 0 {
					tokens = append(tokens, current.String())
					current.Reset()
				}
				current.WriteRune(char)
				inBrackets = true
			} else {
				current.WriteRune(char)
			}
		case ']':
			if !inQuotes && inBrackets {
				current.WriteRune(char)
				tokens = append(tokens, current.String())
				current.Reset()
				inBrackets = false
			} else {
				current.WriteRune(char)
			}
		case ' ', '\t':
			if inQuotes || inBrackets {
				current.WriteRune(char)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// parseStatement parses a single PBRT statement line
func parseStatement(line string) (*PBRTStatement, error) {
	// Transform-like statements take bare numbers
	for _, transform := range []string{"LookAt", "Translate", "Rotate", "Scale", "Transform"} {
		if strings.HasPrefix(line, transform) {
			parts := strings.Fields(line[len(transform):])
			return &PBRTStatement{
				Type: transform,
				Parameters: map[string]PBRTParam{
					"values": {Type: "float", Values: parts},
				},
			}, nil
		}
	}

	// Parse regular statements: Type "subtype" "param type" value
	parts := tokenizePBRT(line)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid statement format")
	}

	stmt := &PBRTStatement{
		Type:       parts[0],
		Parameters: make(map[string]PBRTParam),
	}

	// Extract subtype (quoted string after type)
	if strings.HasPrefix(parts[1], "\"") && strings.HasSuffix(parts[1], "\"") {
		stmt.Subtype = strings.Trim(parts[1], "\"")
		parts = parts[2:]
	} else {
		parts = parts[1:]
	}

	i := 0
	for i < len(parts) {
		if !strings.HasPrefix(parts[i], "\"") {
			i++
			continue
		}

		// Find parameter name and type
		paramDef := strings.Trim(parts[i], "\"")
		paramParts := strings.Fields(paramDef)
		if len(paramParts) != 2 {
			i++
			continue
		}

		paramType := paramParts[0]
		paramName := paramParts[1]
		i++

		var values []string
		if i < len(parts) {
			if strings.HasPrefix(parts[i], "[") && strings.HasSuffix(parts[i], "]") {
				// Array value - already tokenized as single token
				arrayStr := strings.Trim(parts[i], "[] ")
				values = strings.Fields(arrayStr)
			} else {
				values = []string{parts[i]}
			}
			i++
		}

		stmt.Parameters[paramName] = PBRTParam{
			Type:   paramType,
			Values: values,
		}
	}

	return stmt, nil
}

// GetFloatParam extracts a float parameter from a PBRT statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetSpectrumParam extracts a spectral parameter. rgb/spectrum/color
// parameters need three values; a float parameter is broadcast to every channel.
func (stmt *PBRTStatement) GetSpectrumParam(name string) (core.Spectrum, bool, error) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return core.Spectrum{}, false, nil
	}

	switch param.Type {
	case "rgb", "spectrum", "color":
		if len(param.Values) != 3 {
			return core.Spectrum{}, true, fmt.Errorf("parameter %s needs 3 values, got %d", name, len(param.Values))
		}
		var s core.Spectrum
		for c, raw := range param.Values {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return core.Spectrum{}, true, fmt.Errorf("invalid %s channel %d '%s': %w", name, c, raw, err)
			}
			s[c] = v
		}
		return s, true, nil
	case "float":
		if len(param.Values) != 1 {
			return core.Spectrum{}, true, fmt.Errorf("parameter %s needs 1 value, got %d", name, len(param.Values))
		}
		v, err := strconv.ParseFloat(param.Values[0], 64)
		if err != nil {
			return core.Spectrum{}, true, fmt.Errorf("invalid %s '%s': %w", name, param.Values[0], err)
		}
		return core.SpectrumFromScalar(v), true, nil
	default:
		return core.Spectrum{}, true, fmt.Errorf("parameter %s has unsupported type %s", name, param.Type)
	}
}

// GetStringParam extracts a string parameter from a PBRT statement
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return strings.Trim(param.Values[0], "\""), true
}

// isStatementStart determines if a line starts a new PBRT statement
func isStatementStart(line string) bool {
	statementTypes := []string{
		"Camera", "Film", "Sampler", "Integrator", "LookAt",
		"Material", "MakeNamedMaterial", "NamedMaterial", "Texture",
		"Shape", "LightSource", "AreaLightSource",
		"Translate", "Rotate", "Scale", "Transform",
		"ReverseOrientation", "Attribute",
	}

	for _, stmt := range statementTypes {
		if strings.HasPrefix(line, stmt+" ") || line == stmt {
			return true
		}
	}
	return false
}
