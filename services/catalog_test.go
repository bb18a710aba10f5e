package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, 11, c.Len())

	e, ok := c.Lookup("hafiz_road")
	require.True(t, ok)
	assert.Equal(t, CriterionSurahs, e.Criterion)
	assert.Equal(t, 114, e.Threshold)

	_, ok = c.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestSatisfiedBy(t *testing.T) {
	cases := []struct {
		name  string
		entry CatalogEntry
		snap  ActivitySnapshot
		want  bool
	}{
		{"pages below", CatalogEntry{Criterion: CriterionPages, Threshold: 10}, ActivitySnapshot{PagesRead: 9}, false},
		{"pages exact", CatalogEntry{Criterion: CriterionPages, Threshold: 10}, ActivitySnapshot{PagesRead: 10}, true},
		{"streak above", CatalogEntry{Criterion: CriterionStreak, Threshold: 7}, ActivitySnapshot{CurrentStreak: 8}, true},
		{"surahs exact", CatalogEntry{Criterion: CriterionSurahs, Threshold: 1}, ActivitySnapshot{SurahsCompleted: 1}, true},
		{"early window", CatalogEntry{Criterion: CriterionTime, Threshold: 10, Window: WindowEarly}, ActivitySnapshot{EarlyReads: 10}, true},
		{"night window ignores early", CatalogEntry{Criterion: CriterionTime, Threshold: 10, Window: WindowNight}, ActivitySnapshot{EarlyReads: 10}, false},
		{"unknown criterion", CatalogEntry{Criterion: "moon_phase", Threshold: 1}, ActivitySnapshot{PagesRead: 100}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.entry.SatisfiedBy(tc.snap))
		})
	}
}

func TestLoadCatalogEmptyPath(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog().Len(), c.Len())
}

func TestLoadCatalogMissingFile(t *testing.T) {
	c, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog().Len(), c.Len())
}

func TestLoadCatalogOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	body := `[{"id":"marathon","title":"Marathon","criterion":"pages","threshold":1000}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	e, ok := c.Lookup("marathon")
	require.True(t, ok)
	assert.Equal(t, 1000, e.Threshold)
}

func TestLoadCatalogInvalid(t *testing.T) {
	dir := t.TempDir()

	badJSON := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte("{not json"), 0o644))
	_, err := LoadCatalog(badJSON)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("[]"), 0o644))
	_, err = LoadCatalog(empty)
	assert.Error(t, err)

	missingID := filepath.Join(dir, "noid.json")
	require.NoError(t, os.WriteFile(missingID, []byte(`[{"title":"x","criterion":"pages","threshold":5}]`), 0o644))
	_, err = LoadCatalog(missingID)
	assert.Error(t, err)
}
