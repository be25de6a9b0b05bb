package chart

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"testing"

	"github.com/couchcryptid/crash-zone-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() domain.Table {
	return domain.NewTable([]domain.Crash{
		{Number: "1", City: "BOSTON", TimeText: "08:15 AM", Severity: domain.SeverityNonFatal, CollisionManner: "Rear-end"},
		{Number: "2", City: "BOSTON", TimeText: "05:40 PM", Severity: domain.SeverityPropertyDamage, CollisionManner: "Angle"},
		{Number: "3", City: "WALTHAM", TimeText: "05:05 PM", Severity: domain.SeverityNonFatal, CollisionManner: "Rear-end"},
		{Number: "4", City: "WALTHAM", TimeText: "11:45 PM", Severity: domain.SeverityFatal, CollisionManner: "Head-on"},
	})
}

func TestSeverityByCity_RendersSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SeverityByCity(&buf, sampleTable().SeverityByCity()))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "WALTHAM")
}

func TestSeverityByHour_RendersSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SeverityByHour(&buf, sampleTable().SeverityByHour()))
	assert.Contains(t, buf.String(), "<svg")
}

func TestHourlyLine_RendersSVG(t *testing.T) {
	counts, _ := sampleTable().HourlyCounts()
	var buf bytes.Buffer
	require.NoError(t, HourlyLine(&buf, counts))
	assert.Contains(t, buf.String(), "<svg")
}

func TestCausePie_RendersSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CausePie(&buf, TitleCauses, sampleTable().RankCauses()))
	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "Rear-end 50.0%")
}

func requireWellFormedSVG(t *testing.T, data []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err)
	}
}

func TestCausePie_EscapesLabels(t *testing.T) {
	causes := []domain.CauseCount{
		{Cause: "A & <B>", Count: 3, Share: 0.75},
		{Cause: "Angle", Count: 1, Share: 0.25},
	}
	var buf bytes.Buffer
	require.NoError(t, CausePie(&buf, "Causes in A & B", causes))

	out := buf.String()
	assert.Contains(t, out, "A &amp; &lt;B&gt; 75.0%")
	assert.NotContains(t, out, "A & <B>")
	requireWellFormedSVG(t, buf.Bytes())
}

func TestSeverityByCity_EscapesCityNames(t *testing.T) {
	tbl := domain.NewTable([]domain.Crash{
		{Number: "1", City: "M&M <TOWN>", TimeText: "08:15 AM", Severity: domain.SeverityNonFatal},
	})
	var buf bytes.Buffer
	require.NoError(t, SeverityByCity(&buf, tbl.SeverityByCity()))

	assert.NotContains(t, buf.String(), "M&M <TOWN>")
	requireWellFormedSVG(t, buf.Bytes())
}

func TestRenderers_EmptyInput(t *testing.T) {
	var buf bytes.Buffer
	empty := domain.NewTable(nil)

	assert.ErrorIs(t, SeverityByCity(&buf, empty.SeverityByCity()), ErrNoData)
	assert.ErrorIs(t, SeverityByHour(&buf, empty.SeverityByHour()), ErrNoData)
	assert.ErrorIs(t, HourlyLine(&buf, nil), ErrNoData)
	assert.ErrorIs(t, CausePie(&buf, TitleCauses, nil), ErrNoData)
	assert.ErrorIs(t, CausePie(&buf, TitleCauses, []domain.CauseCount{{Cause: "Angle"}}), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestLegend(t *testing.T) {
	p := sampleTable().SeverityByCity()

	bySeverity := Legend(p, true)
	require.Len(t, bySeverity, len(p.Columns))
	for _, e := range bySeverity {
		assert.Equal(t, SeverityColor(domain.Severity(e.Label)), e.Color)
	}

	byIndex := Legend(p, false)
	for i, e := range byIndex {
		assert.Equal(t, SeriesColor(i), e.Color)
	}
}

func TestSeverityColor_UnknownIsGray(t *testing.T) {
	assert.Equal(t, "#7f7f7f", SeverityColor("Not Reported"))
	assert.NotEqual(t, SeverityColor(domain.SeverityFatal), SeverityColor(domain.SeverityNonFatal))
}

func TestSeriesColor_Cycles(t *testing.T) {
	assert.Equal(t, SeriesColor(0), SeriesColor(len(Palette)))
}
