package report

import (
	"os"
	"path/filepath"

	"github.com/certifiable-ai/go-bench/bench"
	"github.com/certifiable-ai/go-bench/digest"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// WriteArchive writes the result document zstd-compressed into dir. The file
// is content-addressed by the result-binding hash, so archiving the same
// result twice is idempotent and archives never collide.
//
// Returns the path written.
func WriteArchive(dir string, res *bench.Result) (string, error) {
	data, err := MarshalResult(res)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create archive dir")
	}

	name := digest.ToHex(res.ResultHash) + ".json.zst"
	path := filepath.Join(dir, name)

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return "", errors.Wrap(err, "create zstd encoder")
	}
	compressed := enc.EncodeAll(data, nil)
	enc.Close()

	if err := atomicWrite(path, compressed); err != nil {
		return "", err
	}
	return path, nil
}

// LoadArchive reads a zstd-compressed result document back.
func LoadArchive(path string) (*bench.Result, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read archive")
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(err, "create zstd decoder")
	}
	defer dec.Close()

	data, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, errors.Wrap(err, "decompress archive")
	}

	return UnmarshalResult(data)
}
