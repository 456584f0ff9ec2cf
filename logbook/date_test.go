package logbook

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"01.02.2021", true},
		{"1.2.2021", true},
		{" 31.12.2020 ", true},
		{"29.02.2020", true},
		{"29.02.2021", false},
		{"31.04.2021", false},
		{"00.01.2021", false},
		{"01.13.2021", false},
		{"2021-02-01", false},
		{"01/02/2021", false},
		{"01.02.21", false},
		{"", false},
		{"heute", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidDate(tt.in))
		})
	}
}

func TestToSortKey(t *testing.T) {
	key, err := ToSortKey("5.3.2022")
	require.NoError(t, err)
	assert.Equal(t, "2022-03-05", key)

	_, err = ToSortKey("29.02.2021")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFormat))
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "29.02.2021", fe.Input)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "05.03.2022", NormalizeDate("5.3.2022"))
	assert.Equal(t, "garbage", NormalizeDate(" garbage "))
}

func TestSortKeyPreservesChronologicalOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2000; i++ {
		a := base.AddDate(0, 0, rng.Intn(20000))
		b := a.AddDate(0, 0, rng.Intn(400))

		ka, err := ToSortKey(a.Format(DateLayout))
		require.NoError(t, err)
		kb, err := ToSortKey(b.Format(DateLayout))
		require.NoError(t, err)

		if ka > kb {
			t.Fatalf("sort key order broken: %s (%s) > %s (%s)", ka, a.Format(DateLayout), kb, b.Format(DateLayout))
		}

		back, err := time.Parse(SortLayout, ka)
		require.NoError(t, err)
		assert.Equal(t, a.Format(DateLayout), back.Format(DateLayout))
	}
}
