package chart

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liuren/internal/knowledge"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	base, err := knowledge.StaticLoader{}.Load(context.Background())
	require.NoError(t, err)
	engine, err := NewEngine(base)
	require.NoError(t, err)
	return engine
}

func TestLuogong(t *testing.T) {
	t.Run("always in range", func(t *testing.T) {
		for n1 := 1; n1 <= 6; n1++ {
			for n2 := 1; n2 <= 6; n2++ {
				got := Luogong(n1, n2)
				assert.GreaterOrEqual(t, got, 1, "Luogong(%d,%d)", n1, n2)
				assert.LessOrEqual(t, got, 6, "Luogong(%d,%d)", n1, n2)
			}
		}
	})

	t.Run("commutative", func(t *testing.T) {
		// (n1+n2-1) mod 6 is symmetric in its arguments.
		for n1 := 1; n1 <= 6; n1++ {
			for n2 := 1; n2 <= 6; n2++ {
				assert.Equal(t, Luogong(n1, n2), Luogong(n2, n1))
			}
		}
	})

	t.Run("zero maps to six", func(t *testing.T) {
		assert.Equal(t, 6, Luogong(1, 6))
		assert.Equal(t, 6, Luogong(3, 4))
	})
}

func TestHourBranch(t *testing.T) {
	engine := testEngine(t)

	cases := []struct {
		hour int
		want string
	}{
		{23, "子"},
		{0, "子"},
		{1, "丑"},
		{2, "丑"},
		{3, "寅"},
		{10, "巳"},
		{12, "午"},
		{22, "亥"},
	}
	for _, tc := range cases {
		at := time.Date(2024, 3, 15, tc.hour, 30, 0, 0, time.UTC)
		got, err := engine.HourBranch(at)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.Name, "hour %d", tc.hour)
		assert.Equal(t, tc.hour, got.Hour)
	}
}

func TestGenerateRejectsOutOfRange(t *testing.T) {
	engine := testEngine(t)
	at := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	_, err := engine.Generate(0, 3, at)
	assert.Error(t, err)
	_, err = engine.Generate(3, 7, at)
	assert.Error(t, err)
}

func TestGenerateIdempotent(t *testing.T) {
	engine := testEngine(t)
	at := time.Date(2024, 6, 1, 14, 12, 0, 0, time.UTC)

	first, err := engine.Generate(2, 4, at)
	require.NoError(t, err)
	second, err := engine.Generate(2, 4, at)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("charts differ between runs (-first +second):\n%s", diff)
	}
}

func TestGenerateKnownScenario(t *testing.T) {
	// Numbers (3,5) at hour 10: luogong = (3+5-1) mod 6 = 1.
	engine := testEngine(t)
	at := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	c, err := engine.Generate(3, 5, at)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Luogong)
	assert.Equal(t, "大安", c.Palaces[0].Name)
	assert.True(t, c.Palaces[0].IsLuogong)
	assert.Equal(t, knowledge.KinSelf, c.Kinship[0].Label)
	assert.Equal(t, "巳", c.HourBranch.Name)

	// Body palace marks n1, use palace marks n2.
	assert.True(t, c.Palaces[2].IsBodyPalace)
	assert.True(t, c.Palaces[4].IsUsePalace)
}

func TestHourBranchLandsAtLuogong(t *testing.T) {
	engine := testEngine(t)

	for n1 := 1; n1 <= 6; n1++ {
		for hour := 0; hour < 24; hour += 3 {
			at := time.Date(2024, 9, 9, hour, 5, 0, 0, time.UTC)
			c, err := engine.Generate(n1, 3, at)
			require.NoError(t, err)
			assert.Equal(t, c.HourBranch.Name, c.Palaces[c.Luogong-1].Branch,
				"n1=%d hour=%d", n1, hour)
		}
	}
}

func TestKinshipSelfUnique(t *testing.T) {
	engine := testEngine(t)

	for n1 := 1; n1 <= 6; n1++ {
		for n2 := 1; n2 <= 6; n2++ {
			at := time.Date(2024, 1, 10, 16, 0, 0, 0, time.UTC)
			c, err := engine.Generate(n1, n2, at)
			require.NoError(t, err)

			selfCount := 0
			for _, k := range c.Kinship {
				if k.Label == knowledge.KinSelf {
					selfCount++
					assert.Equal(t, c.Luogong, k.Position)
				}
			}
			assert.Equal(t, 1, selfCount, "n1=%d n2=%d", n1, n2)
		}
	}
}

func TestBeastLatticeIsRotation(t *testing.T) {
	engine := testEngine(t)
	canonical := []string{"青龙", "朱雀", "勾陈", "腾蛇", "白虎", "玄武"}

	for hour := 0; hour < 24; hour += 2 {
		at := time.Date(2024, 5, 5, hour, 0, 0, 0, time.UTC)
		c, err := engine.Generate(4, 2, at)
		require.NoError(t, err)

		// Locate the lattice's first beast in the canonical order, then the
		// whole lattice must follow canonical adjacency from there.
		start := -1
		for i, name := range canonical {
			if name == c.Beasts[0].Name {
				start = i
				break
			}
		}
		require.GreaterOrEqual(t, start, 0, "unknown beast %q", c.Beasts[0].Name)
		for i := 0; i < 6; i++ {
			assert.Equal(t, canonical[(start+i)%6], c.Beasts[i].Name, "hour=%d slot=%d", hour, i)
		}
	}
}

func TestElementSummaryDeterministicOrder(t *testing.T) {
	engine := testEngine(t)
	at := time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC)

	c, err := engine.Generate(1, 1, at)
	require.NoError(t, err)

	require.NotEmpty(t, c.Elements.Present)
	for _, el := range c.Elements.Present {
		row, ok := c.Elements.Relations[el]
		require.True(t, ok)
		assert.NotContains(t, row, el, "no self relation rows")
	}
	for i := 1; i < len(c.Elements.Present); i++ {
		assert.Less(t, elementOrder[c.Elements.Present[i-1]], elementOrder[c.Elements.Present[i]])
	}
}
