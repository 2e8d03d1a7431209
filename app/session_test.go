package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epireport/domain/core"
	"epireport/domain/table"
	"epireport/internal/ingest"
)

func testAnalyzer() *Analyzer {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return Default("the district", 3, logger)
}

func csvFile(name, body string) ingest.File {
	return ingest.File{Name: name, Data: []byte(body)}
}

const boundaryGeoJSON = `{"type":"FeatureCollection","features":[` +
	`{"type":"Feature","properties":{"name":"城关镇"},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},` +
	`{"type":"Feature","properties":{"name":"李家乡"},"geometry":{"type":"Polygon","coordinates":[[[2,0],[3,0],[3,1],[2,1],[2,0]]]}}]}`

func TestProcessFilesRoutesBatch(t *testing.T) {
	s := testAnalyzer().NewSession()

	records := s.ProcessFiles(context.Background(), []ingest.File{
		csvFile("疫情分析报表.csv", "病种,本期发病数,与上期比（%）,与去年同期比（%）\n合计,100,5,-2\n肺结核,60,10,-5\n"),
		csvFile("发病时间分布.csv", "时间,发病数\n1月,30\n2月,70\n"),
		csvFile("年龄性别分布.csv", "年龄组,男,女\n0-4,10,20\n5-9,30,40\n"),
		csvFile("人群分布.csv", "职业,发病数\n农民,40\n学生,10\n"),
		csvFile("地区分布.csv", "乡镇,病例数\n城关镇,45\n"),
		{Name: "boundary.geojson", Data: []byte(boundaryGeoJSON)},
	})

	require.Len(t, records, 6)
	roles := make([]table.Role, 0, len(records))
	for _, rec := range records {
		assert.True(t, rec.Accepted(), "file %s should be accepted", rec.File)
		assert.False(t, core.Hash(rec.Hash).IsEmpty())
		roles = append(roles, rec.Role)
	}
	assert.Equal(t, []table.Role{
		table.RoleSummary, table.RoleTime, table.RoleAge,
		table.RolePopulation, table.RoleArea, table.RoleGeometry,
	}, roles)

	dm := s.Data()
	assert.NotNil(t, dm.Summary)
	assert.NotNil(t, dm.Time)
	assert.NotNil(t, dm.Age)
	assert.NotNil(t, dm.Population)
	assert.NotNil(t, dm.Area)
	assert.NotNil(t, dm.Geometry)
	assert.Equal(t, 2, records[5].Rows, "geometry record counts features")
}

func TestProcessFilesLastWriteWins(t *testing.T) {
	s := testAnalyzer().NewSession()

	s.ProcessFiles(context.Background(), []ingest.File{
		csvFile("地区分布一.csv", "乡镇,病例数\n城关镇,45\n"),
		csvFile("地区分布二.csv", "乡镇,病例数\n城关镇,99\n"),
	})

	area := s.Data().Area
	require.NotNil(t, area)
	assert.Equal(t, "99", area.Cell(0, 1), "second file replaces the first")
}

func TestProcessFilesIsolatesFailures(t *testing.T) {
	s := testAnalyzer().NewSession()

	records := s.ProcessFiles(context.Background(), []ingest.File{
		csvFile("疫情分析报表.csv", "病种,本期发病数\n合计,100\n"),
		{Name: "notes.txt", Data: []byte("not a table")},
		csvFile("发病时间分布.csv", "时间,发病数\n1月,30\n"),
	})

	require.Len(t, records, 3)
	assert.True(t, records[0].Accepted())
	assert.False(t, records[1].Accepted())
	assert.True(t, core.IsUnrecognized(records[1].Err))
	assert.True(t, records[2].Accepted(), "batch continues past a bad file")
	assert.NotNil(t, s.Data().Summary)
	assert.NotNil(t, s.Data().Time)
}

func TestProcessFilesCancelledContext(t *testing.T) {
	s := testAnalyzer().NewSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := s.ProcessFiles(ctx, []ingest.File{
		csvFile("疫情分析报表.csv", "病种,本期发病数\n合计,100\n"),
	})

	require.Len(t, records, 1)
	assert.ErrorIs(t, records[0].Err, context.Canceled)
	assert.Nil(t, s.Data().Summary)
}

func TestSessionReport(t *testing.T) {
	s := testAnalyzer().NewSession()
	s.ProcessFiles(context.Background(), []ingest.File{
		csvFile("疫情分析报表.csv", "病种,本期发病数,与上期比（%）,与去年同期比（%）\n合计,100,5,-2\n肺结核,60,10,-5\n梅毒,30,2,1\n流行性感冒,10,-8,4\n"),
	})

	md := s.Report()
	assert.Contains(t, md, "### I. Recent Situation")
	assert.Contains(t, md, "**100** cases this month")
	assert.Contains(t, md, "肺结核（60例")
}

func TestSessionReportWithoutSummary(t *testing.T) {
	s := testAnalyzer().NewSession()
	assert.Contains(t, s.Report(), "cannot be generated")
}

func TestSessionStatTables(t *testing.T) {
	s := testAnalyzer().NewSession()
	s.ProcessFiles(context.Background(), []ingest.File{
		csvFile("年龄性别分布.csv", "年龄组,男,女\n0-4,10,20\n5-9,30,40\n"),
		csvFile("人群分布.csv", "职业,发病数\n农民,40\n学生,10\n"),
	})

	tables := s.StatTables()
	require.Len(t, tables, 2)
	assert.Equal(t, "表1 不同年龄组发病情况及性别分布", tables[0].Title)
	assert.Equal(t, "表2 重点职业人群发病情况", tables[1].Title)
	assert.Contains(t, tables[0].Table.Headers, "合计")
	assert.Contains(t, tables[0].Table.Headers, "构成比(%)")
	assert.Contains(t, tables[0].Table.Headers, "χ²值", "two value columns support the test")
	assert.Equal(t, "30", tables[0].Table.Cell(0, 3), "row total for 0-4")
}

func TestSessionStatTablesAbsentRoles(t *testing.T) {
	s := testAnalyzer().NewSession()
	s.ProcessFiles(context.Background(), []ingest.File{
		csvFile("人群分布.csv", "职业,发病数\n农民,40\n"),
	})

	tables := s.StatTables()
	require.Len(t, tables, 1)
	assert.Equal(t, "表2 重点职业人群发病情况", tables[0].Title)
}

func TestSessionTimeTrend(t *testing.T) {
	s := testAnalyzer().NewSession()
	s.ProcessFiles(context.Background(), []ingest.File{
		csvFile("发病时间分布.csv", "时间,发病数\n1月,30\n2月,70\n"),
	})

	require.True(t, s.HasTimeTrend())
	var buf bytes.Buffer
	require.NoError(t, s.TimeTrend(&buf))
	assert.Contains(t, buf.String(), "1月")
}

func TestSessionTimeTrendMissing(t *testing.T) {
	s := testAnalyzer().NewSession()
	assert.False(t, s.HasTimeTrend())
	assert.Error(t, s.TimeTrend(&strings.Builder{}))
}

func TestSessionChoropleth(t *testing.T) {
	s := testAnalyzer().NewSession()
	s.ProcessFiles(context.Background(), []ingest.File{
		csvFile("地区分布.csv", "乡镇,病例数\n城关镇,45\n合计,45\n"),
		{Name: "boundary.geojson", Data: []byte(boundaryGeoJSON)},
	})

	require.True(t, s.HasChoropleth())
	result, err := s.Choropleth()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Matched)
	require.Len(t, result.Collection.Features, 2)
	assert.Equal(t, 45.0, result.Collection.Features[0].Properties["cases"])
	assert.Equal(t, 0.0, result.Collection.Features[1].Properties["cases"])
}

func TestSessionChoroplethMissingInputs(t *testing.T) {
	s := testAnalyzer().NewSession()
	assert.False(t, s.HasChoropleth())
	_, err := s.Choropleth()
	assert.True(t, core.IsMissingInput(err))
}

func TestNewSessionIdentity(t *testing.T) {
	a := testAnalyzer()
	one, two := a.NewSession(), a.NewSession()
	assert.NotEqual(t, one.ID, two.ID)
	assert.False(t, one.CreatedAt.IsZero())
}
