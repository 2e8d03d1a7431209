package geo

import (
	"testing"

	"epireport/domain/core"
	"epireport/domain/table"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
)

func unitSquare() orb.Polygon {
	return orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
}

func boundaryFC(nameKey string, names ...string) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, name := range names {
		ft := geojson.NewFeature(unitSquare())
		ft.Properties[nameKey] = name
		ft.Properties["code"] = float64(i)
		fc.Append(ft)
	}
	return fc
}

func areaTable(rows ...[]string) *table.Table {
	return table.New("area.csv", []string{"Name", "Cases"}, rows)
}

func TestJoinMatchesByName(t *testing.T) {
	fc := boundaryFC("Name", "城关镇", "河口乡", "山根村")
	area := areaTable(
		[]string{"城关镇", "45"},
		[]string{"河口乡", "12"},
		[]string{"合计", "57"},
	)

	res, err := Join(fc, area)
	assert.NoError(t, err)
	assert.Equal(t, 2, res.Matched)
	assert.Empty(t, res.Unmatched)

	byName := make(map[string]float64)
	for _, ft := range res.Collection.Features {
		byName[ft.Properties.MustString("name")] = ft.Properties["cases"].(float64)
	}
	assert.Equal(t, 45.0, byName["城关镇"])
	assert.Equal(t, 12.0, byName["河口乡"])
	assert.Equal(t, 0.0, byName["山根村"], "regions without a row shade to zero")
}

func TestJoinTrimsWhitespaceOnBothSides(t *testing.T) {
	fc := boundaryFC("town", " 城关镇 ")
	area := areaTable([]string{"城关镇　", "9"})

	res, err := Join(fc, area)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, "城关镇", res.Collection.Features[0].Properties.MustString("name"))
	assert.Equal(t, 9.0, res.Collection.Features[0].Properties["cases"])
}

func TestJoinReportsUnmatchedRows(t *testing.T) {
	fc := boundaryFC("name", "城关镇")
	area := areaTable(
		[]string{"城关镇", "45"},
		[]string{"未知乡", "7"},
		[]string{"别处村", "3"},
	)

	res, err := Join(fc, area)
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, []string{"别处村", "未知乡"}, res.Unmatched)
}

func TestJoinFallsBackToFirstStringProperty(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	ft := geojson.NewFeature(unitSquare())
	ft.Properties["zcode"] = float64(3)
	ft.Properties["adm"] = "东村"
	fc.Append(ft)

	res, err := Join(fc, areaTable([]string{"东村", "5"}))
	assert.NoError(t, err)
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, "东村", res.Collection.Features[0].Properties.MustString("name"))
}

func TestJoinDoesNotMutateInput(t *testing.T) {
	fc := boundaryFC("name", "城关镇")
	_, err := Join(fc, areaTable([]string{"城关镇", "45"}))
	assert.NoError(t, err)

	_, has := fc.Features[0].Properties["cases"]
	assert.False(t, has, "input features must stay untouched")
}

func TestJoinInputErrors(t *testing.T) {
	fc := boundaryFC("name", "城关镇")

	_, err := Join(nil, areaTable([]string{"城关镇", "1"}))
	assert.ErrorIs(t, err, core.ErrMissingGeometry)

	_, err = Join(fc, nil)
	assert.True(t, core.IsMissingInput(err))

	numeric := geojson.NewFeatureCollection()
	ft := geojson.NewFeature(unitSquare())
	ft.Properties["code"] = float64(1)
	numeric.Append(ft)
	_, err = Join(numeric, areaTable([]string{"城关镇", "1"}))
	assert.Error(t, err, "no string property to join on")
}
