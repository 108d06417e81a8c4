package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/certifiable-ai/go-bench/digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "golden.json")

	ref := &GoldenRef{
		OutputHash:  digest.Sum([]byte("reference outputs")),
		SampleCount: 1000,
		OutputSize:  1024,
		Platform:    "x86_64",
	}
	require.NoError(t, Save(path, ref))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ref, loaded)
}

func TestLoadToleratesMissingOptionalFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "golden.json")

	doc := `{"output_hash": "` + digest.ToHex(digest.Sum([]byte("x"))) + `"}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	ref, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, digest.Sum([]byte("x")), ref.OutputHash)
	assert.Zero(t, ref.SampleCount)
	assert.Zero(t, ref.OutputSize)
	assert.Empty(t, ref.Platform)
}

func TestLoadRejectsMalformedInput(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"not-json":   `not json at all`,
		"no-hash":    `{"version": "1.0"}`,
		"bad-hash":   `{"output_hash": "zzzz"}`,
		"short-hash": `{"output_hash": "abcd"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			_, err := Load(path)
			assert.ErrorIs(t, err, ErrGoldenLoad)
		})
	}

	_, err := Load(filepath.Join(dir, "does-not-exist.json"))
	assert.ErrorIs(t, err, ErrGoldenLoad)
}

func TestMatches(t *testing.T) {
	d := digest.Sum([]byte("outputs"))
	ref := &GoldenRef{OutputHash: d}

	assert.True(t, ref.Matches(d))
	assert.False(t, ref.Matches(digest.Sum([]byte("different"))))

	var nilRef *GoldenRef
	assert.False(t, nilRef.Matches(d))
}

func TestResultBindingDeterminism(t *testing.T) {
	out := digest.Sum([]byte("outputs"))
	st := BindingStats{MinNs: 100, MaxNs: 900, MeanNs: 400, P99Ns: 850}

	a := ResultBinding(out, "x86_64", 7, st, 1_700_000_000)
	b := ResultBinding(out, "x86_64", 7, st, 1_700_000_000)
	assert.Equal(t, a, b)
}

func TestResultBindingPerturbation(t *testing.T) {
	out := digest.Sum([]byte("outputs"))
	st := BindingStats{MinNs: 100, MaxNs: 900, MeanNs: 400, P99Ns: 850}
	base := ResultBinding(out, "x86_64", 7, st, 1_700_000_000)

	perturbed := []digest.Digest{
		ResultBinding(digest.Sum([]byte("other")), "x86_64", 7, st, 1_700_000_000),
		ResultBinding(out, "aarch64", 7, st, 1_700_000_000),
		ResultBinding(out, "x86_64", 8, st, 1_700_000_000),
		ResultBinding(out, "x86_64", 7, BindingStats{MinNs: 101, MaxNs: 900, MeanNs: 400, P99Ns: 850}, 1_700_000_000),
		ResultBinding(out, "x86_64", 7, BindingStats{MinNs: 100, MaxNs: 901, MeanNs: 400, P99Ns: 850}, 1_700_000_000),
		ResultBinding(out, "x86_64", 7, BindingStats{MinNs: 100, MaxNs: 900, MeanNs: 401, P99Ns: 850}, 1_700_000_000),
		ResultBinding(out, "x86_64", 7, BindingStats{MinNs: 100, MaxNs: 900, MeanNs: 400, P99Ns: 851}, 1_700_000_000),
		ResultBinding(out, "x86_64", 7, st, 1_700_000_001),
	}
	for i, p := range perturbed {
		assert.NotEqual(t, base, p, "perturbation %d", i)
	}
}
