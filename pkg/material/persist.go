package material

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrShortRecord is returned when a persisted SGD record ends early
var ErrShortRecord = errors.New("truncated SGD record")

// recordSize is eleven spectra of three float32 channels plus the roughness
const recordSize = (11*3 + 1) * 4

// WriteTo persists the parameters: the eleven spectra in the order diffuse,
// specular, alpha, p, kappa, F0, F1, lambda, c, k, theta0 (three little-endian
// float32 channels each), then roughness as a single float32.
func (s *SGD) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 0, recordSize)
	params := s.params
	for _, spectrum := range params.spectra() {
		for _, v := range spectrum {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
		}
	}
	buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(params.Roughness)))

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write SGD record: %w", err)
	}
	return int64(n), nil
}

// ReadSGD restores a material written by WriteTo and configures it.
// Exactly one record is consumed from r.
func ReadSGD(r io.Reader) (*SGD, error) {
	var buf [recordSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, readError(err)
	}
	readFloat := func(i int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
	}

	var params Params
	for i, spectrum := range params.spectra() {
		for c := range spectrum {
			spectrum[c] = readFloat(i*3 + c)
		}
	}
	params.Roughness = readFloat(recordSize/4 - 1)

	return NewSGD(params), nil
}

func readError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("reading SGD record: %w", ErrShortRecord)
	}
	return fmt.Errorf("reading SGD record: %w", err)
}
