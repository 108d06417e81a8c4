// Package report serialises benchmark results and comparisons: JSON
// documents, CSV rows, human-readable terminal summaries, compressed result
// archives and histogram charts.
//
// Serialisation preserves every integer byte-exactly and renders hash fields
// as 64 lowercase hex characters. Serialising the same result twice yields
// byte-identical output.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/certifiable-ai/go-bench/bench"
	"github.com/certifiable-ai/go-bench/digest"
	"github.com/pkg/errors"
)

// resultDoc is the on-disk JSON form of a result. It mirrors bench.Result
// with the digests rendered as hex.
type resultDoc struct {
	Version    string        `json:"version"`
	Result     *bench.Result `json:"result"`
	OutputHash string        `json:"output_hash"`
	ResultHash string        `json:"result_hash"`
}

const docVersion = "1.0"

// MarshalResult renders a result as an indented JSON document. Field order
// is fixed by the struct layout, so two serialisations of the same record
// are byte-identical.
func MarshalResult(res *bench.Result) ([]byte, error) {
	if res == nil {
		return nil, errors.New("report: nil result")
	}
	doc := resultDoc{
		Version:    docVersion,
		Result:     res,
		OutputHash: digest.ToHex(res.OutputHash),
		ResultHash: digest.ToHex(res.ResultHash),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal result")
	}
	return append(data, '\n'), nil
}

// WriteJSON writes the result document to path. The write goes through a
// temp file and rename so a failure leaves no partial document.
func WriteJSON(path string, res *bench.Result) error {
	data, err := MarshalResult(res)
	if err != nil {
		return err
	}
	return atomicWrite(path, data)
}

// LoadJSON reads a result document written by WriteJSON.
func LoadJSON(path string) (*bench.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read result")
	}
	return UnmarshalResult(data)
}

// UnmarshalResult parses a result document produced by MarshalResult.
func UnmarshalResult(data []byte) (*bench.Result, error) {
	var doc resultDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parse result")
	}
	if doc.Result == nil {
		return nil, errors.New("report: document has no result")
	}

	if doc.OutputHash != "" {
		h, err := digest.FromHex(doc.OutputHash)
		if err != nil {
			return nil, errors.Wrap(err, "parse output hash")
		}
		doc.Result.OutputHash = h
	}
	if doc.ResultHash != "" {
		h, err := digest.FromHex(doc.ResultHash)
		if err != nil {
			return nil, errors.Wrap(err, "parse result hash")
		}
		doc.Result.ResultHash = h
	}

	return doc.Result, nil
}

// atomicWrite writes data to path via a sibling temp file and a rename.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "write report")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "close report")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "chmod report")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "rename report")
}
