package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVQuotedFieldKeepsEmbeddedComma(t *testing.T) {
	in := "id,intensity,is_core\n\"a,b\",\"1\",\"true\"\n"
	cat, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())

	task := cat.Tasks()[0]
	assert.Equal(t, "a,b", task.ID)
	assert.Equal(t, 1, task.Intensity)
	assert.True(t, task.IsCore)
}

func TestParseCSVSynthesizesIDsWithoutIDColumn(t *testing.T) {
	in := "category,domain,intensity\ncare,body,1\nvoice,voice,2\n"
	cat, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)

	tasks := cat.Tasks()
	assert.Equal(t, "task_0", tasks[0].ID)
	assert.Equal(t, "task_1", tasks[1].ID)
}

func TestParseCSVBooleanOnlyTrueForLiteralTrue(t *testing.T) {
	in := "id,is_core,requires_privacy\na,TRUE,yes\nb,true,true\n"
	cat, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)

	a, _ := cat.ByID("a")
	assert.False(t, a.IsCore)
	assert.False(t, a.RequiresPrivacy)

	b, _ := cat.ByID("b")
	assert.True(t, b.IsCore)
	assert.True(t, b.RequiresPrivacy)
}

func TestParseCSVNumericColumns(t *testing.T) {
	in := "id,intensity,duration_minutes,target_count,points\n" +
		"a,3,15,,25\n" +
		"b,,,5,\n" +
		"c,not-a-number,also-bad,,\n"
	cat, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)

	a, _ := cat.ByID("a")
	assert.Equal(t, 3, a.Intensity)
	require.NotNil(t, a.DurationMinutes)
	assert.Equal(t, 15, *a.DurationMinutes)
	assert.Nil(t, a.TargetCount)
	assert.Equal(t, 25, a.Points)

	b, _ := cat.ByID("b")
	assert.Equal(t, 1, b.Intensity) // blank falls back, never zero
	assert.Nil(t, b.DurationMinutes)
	require.NotNil(t, b.TargetCount)
	assert.Equal(t, 5, *b.TargetCount)

	// malformed numbers degrade, they never error
	c, _ := cat.ByID("c")
	assert.Equal(t, 1, c.Intensity)
	assert.Nil(t, c.DurationMinutes)
}

func TestParseCSVDefaultsAndBlankLines(t *testing.T) {
	in := "id,category,time_window,completion_type\n\na,care,,\n\nb,voice,night,duration\n"
	cat, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 2, cat.Len())

	a, _ := cat.ByID("a")
	assert.Equal(t, WindowAny, a.TimeWindow)
	assert.Equal(t, CompletionBinary, a.CompletionType)

	b, _ := cat.ByID("b")
	assert.Equal(t, WindowNight, b.TimeWindow)
	assert.Equal(t, CompletionDuration, b.CompletionType)
}

func TestParseCSVEmptyInputErrors(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = ParseCSV(strings.NewReader("id,category\n"))
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestCatalogLookups(t *testing.T) {
	cat, err := New([]Task{
		{ID: "a", Category: "care", Domain: "body", Intensity: 1, TimeWindow: WindowAny},
		{ID: "b", Category: "voice", Domain: "voice", Intensity: 2, TimeWindow: WindowMorning},
	})
	require.NoError(t, err)

	got, ok := cat.Find("voice", "voice", 2)
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	_, ok = cat.Find("voice", "voice", 3)
	assert.False(t, ok)

	anyWin := cat.AnyWindow()
	require.Len(t, anyWin, 1)
	assert.Equal(t, "a", anyWin[0].ID)
}
