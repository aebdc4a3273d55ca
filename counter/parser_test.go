package counter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCNF(t *testing.T) {
	cnf := `c a small formula
p cnf 3 2
1 2 0
c a comment between clauses
2 -3 0
`
	f, err := ParseCNF(strings.NewReader(cnf))
	require.NoError(t, err)
	assert.Equal(t, 3, f.NbVars)
	require.Len(t, f.Clauses, 2)
	assert.Equal(t, Clause{1, 2}, f.Clauses[0])
	assert.Equal(t, Clause{2, -3}, f.Clauses[1])
	assert.False(t, f.Weighted())
}

func TestParseCNFSortsClauses(t *testing.T) {
	f, err := ParseCNF(strings.NewReader("p cnf 3 1\n3 -1 2 0\n"))
	require.NoError(t, err)
	require.Len(t, f.Clauses, 1)
	assert.Equal(t, Clause{-1, 2, 3}, f.Clauses[0])
}

func TestParseCNFWeights(t *testing.T) {
	cnf := `p cnf 3 1
w 1 0.3
w 2 -1
1 2 0
`
	f, err := ParseCNF(strings.NewReader(cnf))
	require.NoError(t, err)
	require.True(t, f.Weighted())
	require.Len(t, f.Weights, 8)
	assert.InDelta(t, 0.3, f.Weights[2], 1e-12)
	assert.InDelta(t, 0.7, f.Weights[3], 1e-12)
	assert.Equal(t, 1.0, f.Weights[4])
	assert.Equal(t, 1.0, f.Weights[5])
	assert.Equal(t, 1.0, f.Weights[6])
	assert.Equal(t, 1.0, f.Weights[7])
}

func TestParseCNFErrors(t *testing.T) {
	for name, cnf := range map[string]string{
		"no header":           "1 2 0\n",
		"literal out of range": "p cnf 2 1\n1 3 0\n",
		"unfinished clause":   "p cnf 2 1\n1 2\n",
		"weight before hdr":   "w 1 0.5\np cnf 1 0\n",
		"bad weight var":      "p cnf 2 0\nw 5 0.5\n",
		"bad weight value":    "p cnf 2 0\nw 1 abc\n",
		"empty input":         "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCNF(strings.NewReader(cnf))
			assert.Error(t, err)
		})
	}
}
