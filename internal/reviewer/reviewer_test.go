package reviewer

import (
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestReview_ReturnsDefault(t *testing.T) {
	for _, year := range []int{1, -10, Present, 1999, -100000} {
		got, err := Review(year)
		require.NoError(t, err, "year %d", year)
		assert.Contains(t, Defaults(), got, "year %d", year)
	}
}

func TestReview_DefaultSweep(t *testing.T) {
	for year := -50; year <= Present; year++ {
		if IsSpecial(year) {
			continue
		}
		got, err := Review(year)
		require.NoError(t, err)
		assert.True(t, IsDefault(got), "year %d returned %q", year, got)
	}
}

func TestReview_Specials(t *testing.T) {
	cases := map[int]string{
		0:    "Jesus Christ what a year!",
		42:   "A year worth living for",
		1337: ":sunglasses:",
		1984: "You never felt alone",
		1987: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		2020: "Sad year :(",
	}
	for year, want := range cases {
		got, err := Review(year)
		require.NoError(t, err)
		assert.Equal(t, want, got, "year %d", year)
	}
	assert.Equal(t, cases, Specials())
}

func TestReview_SpecialsAreIdempotent(t *testing.T) {
	for year, want := range Specials() {
		for i := 0; i < 20; i++ {
			got, err := Review(year)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}

func TestReview_FutureYear(t *testing.T) {
	_, err := Review(Present + 1)
	require.Error(t, err)
	assert.Equal(t, RangeKind, KindOf(err))
	assert.ErrorIs(t, err, ErrRange)

	_, err = Review(math.MaxInt)
	assert.Equal(t, RangeKind, KindOf(err))
}

func TestReview_PickerChoosesDefault(t *testing.T) {
	for i, want := range Defaults() {
		r := New(WithPicker(func(n int) int {
			assert.Equal(t, 4, n)
			return i
		}))
		got, err := r.Review(1)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestReview_PickerNotCalledForSpecials(t *testing.T) {
	r := New(WithPicker(func(n int) int {
		t.Fatal("picker called for a special year")
		return 0
	}))
	_, err := r.Review(1337)
	require.NoError(t, err)
}

func TestReview_EveryDefaultReachable(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000 && len(seen) < len(Defaults()); i++ {
		got, err := Review(7)
		require.NoError(t, err)
		seen[got] = true
	}
	assert.Len(t, seen, len(Defaults()))
}

func TestReviewValue_TypeErrors(t *testing.T) {
	for _, v := range []any{"42", 42.3, 42.0, float32(1), true, nil, []int{42}, json.Number("42.3"), json.Number("4e2")} {
		_, err := ReviewValue(v)
		require.Error(t, err, "value %#v", v)
		assert.Equal(t, TypeKind, KindOf(err), "value %#v", v)
	}
}

func TestReviewValue_TypeErrorNamesType(t *testing.T) {
	_, err := ReviewValue("42")
	assert.EqualError(t, err, "Expected int, received string")

	_, err = ReviewValue(42.3)
	assert.EqualError(t, err, "Expected int, received float64")

	_, err = ReviewValue(nil)
	assert.EqualError(t, err, "Expected int, received nil")
}

func TestReviewValue_IntegerKinds(t *testing.T) {
	for _, v := range []any{int(42), int8(42), int16(42), int32(42), int64(42), uint(42), uint8(42), uint16(42), uint32(42), uint64(42), Year(42), json.Number("42")} {
		got, err := ReviewValue(v)
		require.NoError(t, err, "value %#v", v)
		assert.Equal(t, "A year worth living for", got)
	}
}

func TestReviewValue_Overflow(t *testing.T) {
	_, err := ReviewValue(uint64(math.MaxUint64))
	assert.Equal(t, RangeKind, KindOf(err))

	_, err = ReviewValue(json.Number("99999999999999999999"))
	assert.Equal(t, RangeKind, KindOf(err))

	got, err := ReviewValue(json.Number("-99999999999999999999"))
	require.NoError(t, err)
	assert.True(t, IsDefault(got))
}

func TestEvaluate(t *testing.T) {
	res, err := Evaluate(1984)
	require.NoError(t, err)
	assert.Equal(t, Result{Year: 1984, Text: "You never felt alone", Special: true}, res)

	r := New(WithPicker(func(int) int { return 3 }))
	res, err = r.Evaluate(int64(1900))
	require.NoError(t, err)
	assert.Equal(t, Result{Year: 1900, Text: "Nothing special"}, res)
}

func TestParseYear(t *testing.T) {
	y, err := ParseYear(" 1987 ")
	require.NoError(t, err)
	assert.Equal(t, 1987, y)

	y, err = ParseYear("-10")
	require.NoError(t, err)
	assert.Equal(t, -10, y)

	_, err = ParseYear("42.3")
	assert.Equal(t, TypeKind, KindOf(err))
	assert.EqualError(t, err, "Expected int, received float")

	_, err = ParseYear("forty-two")
	assert.Equal(t, TypeKind, KindOf(err))
	assert.EqualError(t, err, "Expected int, received string")

	_, err = ParseYear("")
	assert.Equal(t, TypeKind, KindOf(err))

	_, err = ParseYear("2022")
	assert.Equal(t, RangeKind, KindOf(err))

	_, err = ParseYear("99999999999999999999")
	assert.Equal(t, RangeKind, KindOf(err))
}

func TestYear_Review(t *testing.T) {
	got, err := Year(2020).Review()
	require.NoError(t, err)
	assert.Equal(t, "Sad year :(", got)
	assert.True(t, Year(2020).Special())
	assert.False(t, Year(2019).Special())
	assert.Equal(t, "2020", Year(2020).String())

	_, err = Year(2077).Review()
	assert.ErrorIs(t, err, ErrRange)
}

func TestDefaults_ReturnsCopy(t *testing.T) {
	d := Defaults()
	d[0] = "changed"
	assert.Equal(t, "Meh", Defaults()[0])

	s := Specials()
	s[42] = "changed"
	assert.Equal(t, "A year worth living for", Specials()[42])
}

func TestReview_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got, err := Review(year)
				assert.NoError(t, err)
				assert.True(t, IsDefault(got))
			}
		}(1000 + i)
	}
	wg.Wait()
}
