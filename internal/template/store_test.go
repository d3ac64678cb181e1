package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestNewStoreWritesGeneric(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, nil)
	require.NoError(t, err)

	assert.NotNil(t, s.Get(GenericName))
	_, err = os.Stat(filepath.Join(dir, GenericName+".yaml"))
	assert.NoError(t, err, "generic profile should be persisted on first load")
}

func TestStoreAddAssignsSequentialNames(t *testing.T) {
	s := newTestStore(t)

	t1 := Synthesize([]string{"1. 화학제품과 회사에 관한 정보"})
	require.NoError(t, s.Add(t1))
	assert.Equal(t, "pattern_0001", t1.Name)

	t2 := Synthesize([]string{"SECTION 1: Identification"})
	require.NoError(t, s.Add(t2))
	assert.Equal(t, "pattern_0002", t2.Name)

	// survives a reload
	require.NoError(t, s.Reload())
	assert.NotNil(t, s.Get("pattern_0001"))
	assert.NotNil(t, s.Get("pattern_0002"))
}

func TestStoreSkipsMalformedProfile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("detect: [not: a: map"), 0o644))

	s, err := NewStore(dir, nil)
	require.NoError(t, err, "a malformed profile must not take down the store")
	assert.Nil(t, s.Get("broken"))
	assert.NotNil(t, s.Get(GenericName))
}

func TestNextNameCountsUnparsableFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pattern_0007.yaml"), []byte("::::"), 0o644))

	s, err := NewStore(dir, nil)
	require.NoError(t, err)
	name, err := s.NextName()
	require.NoError(t, err)
	assert.Equal(t, "pattern_0008", name)
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, nil)
	require.NoError(t, err)

	tpl := Generic()
	tpl.Name = ""
	tpl.Composition.Block = BlockLayout{Mode: "ltr", Stride: 3, FieldOrder: []string{"name", "cas", "conc"}}
	require.NoError(t, s.Add(tpl))

	require.NoError(t, s.Reload())
	got := s.Get(tpl.Name)
	require.NotNil(t, got)
	assert.Equal(t, "ltr", got.Composition.Block.Mode)
	assert.Equal(t, 3, got.Composition.Block.Stride)
	assert.Equal(t, []string{"name", "cas", "conc"}, got.Composition.Block.FieldOrder)
}
