package utils

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgExtrema(t *testing.T) {
	values := []float64{3, -1, 7, 7, 2}
	assert.Equal(t, 2, Argmax(values))
	assert.Equal(t, 1, Argmin(values))
	assert.Equal(t, 0, Argmax([]int{5}))
	assert.Equal(t, 12.0, SumSlice([]float64{1, 2, 9}))
	assert.Equal(t, 3, IntAbs(-3))
}

func TestIntersect(t *testing.T) {
	found := Intersect([]string{"nm", "mkm"}, []string{"s", "mkm"})
	require.NotNil(t, found)
	assert.Equal(t, "mkm", *found)
	assert.Nil(t, Intersect([]string{"nm"}, nil))
}

func TestChunks(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 4}, {4, 7}, {7, 10}}, Chunks(10, 3))
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, Chunks(2, 8))
	assert.Equal(t, [][2]int{{0, 5}}, Chunks(5, 0))
	assert.Nil(t, Chunks(0, 4))

	covered := 0
	for _, chunk := range Chunks(2001, 7) {
		assert.Equal(t, covered, chunk[0])
		covered = chunk[1]
	}
	assert.Equal(t, 2001, covered)
}

func TestSearches(t *testing.T) {
	parabola := func(x float64) float64 { return -(x - 0.3) * (x - 0.3) }
	assert.InDelta(t, 0.3, TernarySearchMax(parabola, -1, 2, 1e-9), 1e-8)
	assert.InDelta(t, 0.3, TernarySearchMin(func(x float64) float64 { return -parabola(x) }, -1, 2, 1e-9), 1e-8)

	falseDom, trueDom := BinarySearch(func(x float64) bool { return math.Cos(x) < 0 }, 0, 3, 1e-10)
	assert.InDelta(t, math.Pi/2, falseDom, 1e-9)
	assert.InDelta(t, math.Pi/2, trueDom, 1e-9)
}

func TestReadFloatPairs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pairs.txt")
	require.NoError(t, os.WriteFile(path, []byte("# r sigma\n0.5 0.1\n\n1e0\t2.5e-1\n"), 0o600))

	pairs, err := ReadFloatPairs(path)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.5, 0.1}, {1, 0.25}}, pairs)

	require.NoError(t, os.WriteFile(path, []byte("1 2 3\n"), 0o600))
	_, err = ReadFloatPairs(path)
	assert.Error(t, err)

	_, err = ReadFloatPairs(filepath.Join(dir, "absent.txt"))
	assert.Error(t, err)
}

func TestGetFilename(t *testing.T) {
	assert.Equal(t, "venus", GetFilename("/tmp/runs/venus.toml"))
	assert.Equal(t, "plain", GetFilename("plain"))
}

func TestWriteAsCSV(t *testing.T) {
	dir := t.TempDir()
	name, err := WriteAsCSV(CSV{{"run10", "b"}, {"run2", "a"}}, dir, "summary", "models.toml", []string{"model", "value"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "summary", "models.txt"), name)

	content, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "model,value\nrun2,a\nrun10,b\n", string(content))
}

func TestOpenFileFlat(t *testing.T) {
	dir := t.TempDir()
	file, err := OpenFile(false, dir, "polarization", "venus")
	require.NoError(t, err)
	require.NoError(t, file.Close())
	assert.FileExists(t, filepath.Join(dir, "venus_polarization.txt"))
}
