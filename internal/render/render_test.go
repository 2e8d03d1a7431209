package render

import (
	"bytes"
	"strings"
	"testing"

	"epireport/domain/table"

	"github.com/stretchr/testify/assert"
)

func TestThreeLineTable(t *testing.T) {
	tb := table.New("stats", []string{"年龄组", "合计", "构成比(%)"}, [][]string{
		{"0-4", "12", "30.00"},
		{"5-9", "28", "70.00"},
	})

	var buf bytes.Buffer
	err := ThreeLineTable(&buf, "表1 不同年龄组发病情况及性别分布", tb)
	assert.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `<table class="three-line-table">`)
	assert.Contains(t, out, `<div class="caption">表1 不同年龄组发病情况及性别分布</div>`)
	assert.Contains(t, out, "<th>构成比(%)</th>")
	assert.Contains(t, out, "<td>70.00</td>")
}

func TestThreeLineTableEscapesCells(t *testing.T) {
	tb := table.New("stats", []string{"名称"}, [][]string{{"<script>alert(1)</script>"}})

	var buf bytes.Buffer
	err := ThreeLineTable(&buf, "", tb)
	assert.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.NotContains(t, out, `<div class="caption">`, "empty titles render no caption")
}

func TestThreeLineTableNilTable(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, ThreeLineTable(&buf, "x", nil))
}

func TestTimeTrendChart(t *testing.T) {
	tb := table.New("时间分布.csv", []string{"时间", "发病数"}, [][]string{
		{"1月", "30"},
		{"2月", "1,200"},
		{"合计", "1230"},
	})

	var buf bytes.Buffer
	err := TimeTrend(&buf, tb, DefaultChartOptions())
	assert.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "1月")
	assert.Contains(t, out, "2月")
	assert.Contains(t, out, "发病数")
	assert.NotContains(t, out, "合计", "aggregate rows stay off the series")
	assert.Contains(t, out, "1200", "values pass through the numeric normalizer")
}

func TestTimeTrendChartErrors(t *testing.T) {
	var buf bytes.Buffer

	err := TimeTrend(&buf, nil, DefaultChartOptions())
	assert.Error(t, err)

	narrow := table.New("t", []string{"时间"}, [][]string{{"1月"}})
	assert.Error(t, TimeTrend(&buf, narrow, DefaultChartOptions()))

	onlyTotal := table.New("t", []string{"时间", "发病数"}, [][]string{{"合计", "5"}})
	assert.Error(t, TimeTrend(&buf, onlyTotal, DefaultChartOptions()))
}

func TestMarkdownHTML(t *testing.T) {
	out := string(MarkdownHTML("#### 疫情概况\n\n- 本月共报告 120 例"))
	assert.Contains(t, out, "<h4")
	assert.Contains(t, out, "<li>")
	assert.Contains(t, out, "疫情概况")
}

func TestMarkdownHTMLKeepsLineBreaks(t *testing.T) {
	out := string(MarkdownHTML("第一行\n第二行"))
	assert.True(t, strings.Contains(out, "<br"), "single newlines render as hard breaks")
}
