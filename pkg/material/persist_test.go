package material

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/df07/go-sgd-bsdf/pkg/core"
)

func TestSGD_WriteToLayout(t *testing.T) {
	p := glossyParams()
	s := NewSGD(p)

	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if n != recordSize || buf.Len() != recordSize {
		t.Fatalf("Expected %d bytes, wrote %d (buffer %d)", recordSize, n, buf.Len())
	}

	data := buf.Bytes()
	readFloat := func(i int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
	}

	// Spectrum order: diffuse, specular, alpha, p, kappa, F0, F1, lambda, c, k, theta0
	expected := []core.Spectrum{
		p.DiffuseReflectance, p.SpecularReflectance, p.Alpha, p.P, p.Kappa,
		p.F0, p.F1, p.Lambda, p.C, p.K, p.Theta0,
	}
	for i, spectrum := range expected {
		for c := 0; c < 3; c++ {
			if got := readFloat(i*3 + c); got != float64(float32(spectrum[c])) {
				t.Errorf("Spectrum %d channel %d: got %v, expected %v", i, c, got, spectrum[c])
			}
		}
	}
	if got := readFloat(33); got != float64(float32(p.Roughness)) {
		t.Errorf("Roughness: got %v, expected %v", got, p.Roughness)
	}
}

func TestSGD_RoundTrip(t *testing.T) {
	original := NewSGD(glossyParams())

	var buf bytes.Buffer
	if _, err := original.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	restored, err := ReadSGD(&buf)
	if err != nil {
		t.Fatalf("ReadSGD failed: %v", err)
	}

	if math.Abs(restored.SpecularSamplingWeight()-original.SpecularSamplingWeight()) > 1e-6 {
		t.Errorf("Sampling weight not restored: got %f, expected %f",
			restored.SpecularSamplingWeight(), original.SpecularSamplingWeight())
	}

	directions := []core.Vec3{
		core.NewVec3(0, 0, 1),
		core.SphericalDirection(0.3, 0.5),
		core.SphericalDirection(0.8, 2.0),
		core.SphericalDirection(1.3, 4.0),
	}
	for _, wi := range directions {
		for _, wo := range directions {
			q := NewQuery(wi, wo)
			a := original.Evaluate(q, SolidAngle)
			b := restored.Evaluate(q, SolidAngle)
			for c := 0; c < 3; c++ {
				if math.Abs(a[c]-b[c]) > 1e-5*math.Max(1, math.Abs(a[c])) {
					t.Errorf("Evaluate(%v, %v) channel %d: original %v, restored %v", wi, wo, c, a[c], b[c])
				}
			}
			pa := original.PDF(q, SolidAngle)
			pb := restored.PDF(q, SolidAngle)
			if math.Abs(pa-pb) > 1e-5*math.Max(1, pa) {
				t.Errorf("PDF(%v, %v): original %v, restored %v", wi, wo, pa, pb)
			}
		}
	}

	// A second round trip is exact because every value is already float32
	var again bytes.Buffer
	if _, err := restored.WriteTo(&again); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	twice, err := ReadSGD(bytes.NewReader(again.Bytes()))
	if err != nil {
		t.Fatalf("ReadSGD failed: %v", err)
	}
	if twice.Params() != restored.Params() {
		t.Errorf("Second round trip changed parameters:\n%+v\n%+v", twice.Params(), restored.Params())
	}
}

func TestReadSGD_Truncated(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewDefaultSGD().WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	data := buf.Bytes()

	for _, size := range []int{0, 5, 12, recordSize - 1} {
		_, err := ReadSGD(bytes.NewReader(data[:size]))
		if !errors.Is(err, ErrShortRecord) {
			t.Errorf("Size %d: expected ErrShortRecord, got %v", size, err)
		}
	}
}

func TestReadSGD_ConsecutiveRecords(t *testing.T) {
	first := NewSGD(glossyParams())
	second := NewDefaultSGD()

	var buf bytes.Buffer
	for _, m := range []*SGD{first, second} {
		if _, err := m.WriteTo(&buf); err != nil {
			t.Fatalf("WriteTo failed: %v", err)
		}
	}
	buf.WriteString("trailer")

	for i, want := range []*SGD{first, second} {
		got, err := ReadSGD(&buf)
		if err != nil {
			t.Fatalf("Record %d: ReadSGD failed: %v", i, err)
		}
		var wantBytes, gotBytes bytes.Buffer
		want.WriteTo(&wantBytes)
		got.WriteTo(&gotBytes)
		if !bytes.Equal(wantBytes.Bytes(), gotBytes.Bytes()) {
			t.Errorf("Record %d: restored parameters differ", i)
		}
	}

	if rest := buf.String(); rest != "trailer" {
		t.Errorf("Expected stream to resume at %q, got %q", "trailer", rest)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestSGD_WriteToError(t *testing.T) {
	if _, err := NewDefaultSGD().WriteTo(failingWriter{}); err == nil {
		t.Error("Expected write error to be reported")
	}
}
