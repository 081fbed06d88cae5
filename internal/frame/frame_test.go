package frame

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orders(t *testing.T) *Dataset {
	t.Helper()
	d, err := New([]string{"qty", "price"}, [][]any{{int64(2), int64(5)}, {int64(10), int64(3)}})
	require.NoError(t, err)
	return d
}

func TestNew_RejectsDuplicateAndRaggedColumns(t *testing.T) {
	_, err := New([]string{"a", "a"}, [][]any{{1}, {2}})
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = New([]string{"a", "b"}, [][]any{{1, 2}, {3}})
	assert.ErrorIs(t, err, ErrLength)
}

func TestRow_GetAndMissingColumn(t *testing.T) {
	d := orders(t)
	r := d.Row(1)

	v, err := r.Get("price")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	f, err := r.Float("qty")
	require.NoError(t, err)
	assert.Equal(t, 5.0, f)

	_, err = r.Get("discount")
	assert.ErrorIs(t, err, ErrNoColumn)
	assert.Equal(t, map[string]any{"qty": int64(5), "price": int64(3)}, r.Map())
}

func TestWithRows_KeepsRowCountWithoutColumns(t *testing.T) {
	d := WithRows(3)
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 0, d.Width())
	require.NoError(t, d.SetColumn("x", []any{1, 2, 3}))
	assert.ErrorIs(t, d.SetColumn("y", []any{1}), ErrLength)
}

func TestClone_DoesNotShareColumns(t *testing.T) {
	d := orders(t)
	c := d.Clone()
	require.NoError(t, c.SetColumn("qty", []any{int64(0), int64(0)}))

	qty, err := d.Column("qty")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(5)}, qty)
}

func TestFromRecords_PadsShortRecords(t *testing.T) {
	d, err := FromRecords([]string{"a", "b"}, [][]any{{"x", 1}, {"y"}})
	require.NoError(t, err)
	assert.Equal(t, []any{"y", nil}, d.Record(1))

	_, err = FromRecords([]string{"a"}, [][]any{{1, 2}})
	assert.Error(t, err)
}

func TestInferColumn(t *testing.T) {
	cases := []struct {
		name  string
		cells []string
		want  []any
	}{
		{"ints", []string{"1", "", " 3"}, []any{int64(1), nil, int64(3)}},
		{"floats", []string{"1", "2.5"}, []any{1.0, 2.5}},
		{"bools", []string{"true", "FALSE"}, []any{true, false}},
		{"strings", []string{"1", "x", ""}, []any{"1", "x", nil}},
		{"empty", []string{"", ""}, []any{nil, nil}},
		{"nan and inf words", []string{"Nan", "Inf", "infinity"}, []any{"Nan", "Inf", "infinity"}},
		{"finite floats with a nan word", []string{"1.5", "nan"}, []any{"1.5", "nan"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, InferColumn(tc.cells))
		})
	}
}

func TestToFloat(t *testing.T) {
	f, err := ToFloat(" 4.5 ")
	require.NoError(t, err)
	assert.Equal(t, 4.5, f)

	_, err = ToFloat("abc")
	assert.True(t, errors.Is(err, ErrType))
	_, err = ToFloat(nil)
	assert.ErrorIs(t, err, ErrType)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "", Format(nil))
	assert.Equal(t, "20", Format(int64(20)))
	assert.Equal(t, "0.5", Format(0.5))
	assert.Equal(t, "true", Format(true))
}

func TestReadJSON_KeepsKeyOrderAndFillsGaps(t *testing.T) {
	src := `[{"qty": 2, "price": 10.5, "sku": "a"}, {"price": 3, "qty": 5, "note": null, "tags": [1, 2]}]`
	d, err := ReadJSON(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"qty", "price", "sku", "note", "tags"}, d.Columns())
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []any{int64(2), 10.5, "a", nil, nil}, d.Record(0))
	assert.Equal(t, []any{int64(5), int64(3), nil, nil, []any{int64(1), int64(2)}}, d.Record(1))
}

func TestReadJSON_RejectsNonArray(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"a": 1}`))
	assert.Error(t, err)
	_, err = ReadJSON(strings.NewReader(`[1, 2]`))
	assert.Error(t, err)
}

func TestBuilder_RepeatedKeyLastWins(t *testing.T) {
	rec, err := ParseObject([]byte(`{"a": 1, "a": 2, "b": "x"}`))
	require.NoError(t, err)
	b := NewBuilder()
	b.Append(rec)
	d := b.Build()
	assert.Equal(t, []any{int64(2), "x"}, d.Record(0))
}

func TestMarshalRow(t *testing.T) {
	d := orders(t)
	raw, err := d.MarshalRow(0)
	require.NoError(t, err)
	assert.Equal(t, `{"qty":2,"price":10}`, string(raw))
}

func TestMarshalRow_NonFiniteFloatsBecomeNull(t *testing.T) {
	d, err := New([]string{"a", "b", "c"}, [][]any{{math.NaN()}, {math.Inf(1)}, {1.5}})
	require.NoError(t, err)
	raw, err := d.MarshalRow(0)
	require.NoError(t, err)
	assert.Equal(t, `{"a":null,"b":null,"c":1.5}`, string(raw))
}

func TestHead(t *testing.T) {
	d := orders(t)
	assert.Equal(t, 1, d.Head(1).Len())
	assert.Equal(t, 2, d.Head(10).Len())
}
