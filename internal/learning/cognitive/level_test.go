package cognitive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for n := 1; n <= 6; n++ {
		l, err := Parse(n)
		require.NoError(t, err)
		assert.Equal(t, Level(n), l)
	}
	for _, n := range []int{0, 7, -1} {
		_, err := Parse(n)
		assert.Error(t, err, "level %d", n)
	}
}

func TestPrevNext(t *testing.T) {
	_, ok := Remember.Prev()
	assert.False(t, ok)
	p, ok := Apply.Prev()
	require.True(t, ok)
	assert.Equal(t, Understand, p)

	_, ok = Create.Next()
	assert.False(t, ok)
	n, ok := Analyze.Next()
	require.True(t, ok)
	assert.Equal(t, Evaluate, n)
}

func TestLevelsAscending(t *testing.T) {
	ls := Levels()
	require.Len(t, ls, 6)
	for i := 1; i < len(ls); i++ {
		assert.Less(t, ls[i-1], ls[i])
	}
	assert.Equal(t, "analyze", Analyze.String())
}
