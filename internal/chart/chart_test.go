package chart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyplan/internal/result"
)

func TestWrite(t *testing.T) {
	r := &result.Result{
		DT:    1,
		Steps: []int{1, 2, 3},
		Timeseries: []result.Timeseries{{
			Site:         "North",
			Com:          "Elec",
			Created:      map[string][]float64{"Wind park": {4, 6, 2}},
			Buy:          []float64{0, 0, 2},
			Demand:       []float64{3, 5, 4},
			StorageLevel: []float64{4, 5, 3},
		}},
	}
	ts := &r.Timeseries[0]

	path := filepath.Join(t.TempDir(), HTMLName(ts))
	require.NoError(t, Write(path, r, ts))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(raw)
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Energy balance North.Elec")
	assert.Contains(t, html, "Storage level North.Elec")
	assert.Contains(t, html, "Wind park")
}

func TestWriteWithoutStorage(t *testing.T) {
	r := &result.Result{
		Steps: []int{1, 2},
		Timeseries: []result.Timeseries{{
			Site:    "South",
			Com:     "Elec",
			Created: map[string][]float64{"Gas plant": {3, 3}},
			Demand:  []float64{3, 3},
		}},
	}
	ts := &r.Timeseries[0]

	path := filepath.Join(t.TempDir(), HTMLName(ts))
	require.NoError(t, Write(path, r, ts))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Storage level South.Elec")
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, "#ffcc00", colorFor("Photovoltaics"))
	assert.Equal(t, "#000000", colorFor("Demand"))

	// unknown names get a stable, parseable color
	c1 := colorFor("Fusion reactor")
	c2 := colorFor("Fusion reactor")
	assert.Equal(t, c1, c2)
	assert.Len(t, c1, 7)
	assert.True(t, strings.HasPrefix(c1, "#"))
	assert.NotEqual(t, c1, colorFor("Fission reactor"))
}

func TestHTMLName(t *testing.T) {
	ts := &result.Timeseries{Site: "North", Com: "Elec"}
	assert.Equal(t, "chart-North-Elec.html", HTMLName(ts))
}
