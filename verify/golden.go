// Package verify implements golden-reference handling and the result-binding
// digest that ties a benchmark's performance numbers to the byte-exact
// outputs it produced.
package verify

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/certifiable-ai/go-bench/digest"
	"github.com/pkg/errors"
)

// ErrGoldenLoad is returned for a missing or malformed golden reference
// document.
var ErrGoldenLoad = errors.New("verify: golden reference load failed")

// GoldenRef is a pre-computed expected output digest with its provenance.
// A run whose output hash matches the golden digest is bit-identical to the
// reference run.
type GoldenRef struct {
	OutputHash  digest.Digest
	SampleCount uint32
	OutputSize  uint32
	Platform    string
}

// goldenDoc is the on-disk JSON form.
type goldenDoc struct {
	Version     string `json:"version"`
	Format      string `json:"format"`
	OutputHash  string `json:"output_hash"`
	SampleCount uint32 `json:"sample_count,omitempty"`
	OutputSize  uint32 `json:"output_size,omitempty"`
	Platform    string `json:"platform,omitempty"`
}

// Load reads a golden reference document. output_hash is mandatory; the
// remaining fields are optional and default to zero. Any malformed input
// maps to ErrGoldenLoad.
func Load(path string) (*GoldenRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(ErrGoldenLoad, err.Error())
	}

	var doc goldenDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(ErrGoldenLoad, err.Error())
	}
	if doc.OutputHash == "" {
		return nil, errors.Wrap(ErrGoldenLoad, "missing output_hash")
	}

	hash, err := digest.FromHex(doc.OutputHash)
	if err != nil {
		return nil, errors.Wrap(ErrGoldenLoad, err.Error())
	}

	return &GoldenRef{
		OutputHash:  hash,
		SampleCount: doc.SampleCount,
		OutputSize:  doc.OutputSize,
		Platform:    doc.Platform,
	}, nil
}

// Save writes the golden reference document. The write goes through a
// temporary file and a rename so a failed write never leaves a partial
// document behind.
func Save(path string, ref *GoldenRef) error {
	if ref == nil {
		return errors.New("verify: nil golden reference")
	}

	doc := goldenDoc{
		Version:     "1.0",
		Format:      "cb_golden_ref",
		OutputHash:  digest.ToHex(ref.OutputHash),
		SampleCount: ref.SampleCount,
		OutputSize:  ref.OutputSize,
		Platform:    ref.Platform,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal golden reference")
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".golden-*")
	if err != nil {
		return errors.Wrap(err, "create golden temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "write golden reference")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "close golden temp file")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "chmod golden reference")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "rename golden reference")
}

// Matches reports whether a computed output digest equals the golden one,
// using the constant-time comparison.
func (g *GoldenRef) Matches(d digest.Digest) bool {
	if g == nil {
		return false
	}
	return digest.Equal(&g.OutputHash, &d)
}
