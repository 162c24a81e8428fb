package curve

import "sync"

// BinomialCache memoizes binomial coefficients as rows of Pascal's triangle.
// It only ever grows: once a row is published it is never written again, so
// readers only hold the lock long enough to find the row. A cache lives as long
// as whoever constructed it; DefaultCache lives for the whole process.
type BinomialCache struct {
	mu   sync.RWMutex
	rows [][]float64
}

// Process-wide cache used when callers don't bring their own.
var DefaultCache = NewBinomialCache()

func NewBinomialCache() *BinomialCache {
	return &BinomialCache{rows: [][]float64{{1}}}
}

// C(n, i). Out of range i gives 0, which is what the Bernstein sum wants.
func (c *BinomialCache) Coefficient(n, i int) float64 {
	if n < 0 || i < 0 || i > n {
		return 0
	}
	return c.Row(n)[i]
}

// Row n of Pascal's triangle. The returned slice is shared and must not be
// modified.
func (c *BinomialCache) Row(n int) []float64 {
	c.mu.RLock()
	if n < len(c.rows) {
		row := c.rows[n]
		c.mu.RUnlock()
		return row
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	// Someone may have extended the triangle while we waited
	for len(c.rows) <= n {
		previous := c.rows[len(c.rows)-1]
		row := make([]float64, len(previous)+1)
		row[0], row[len(row)-1] = 1, 1
		for i := 1; i < len(row)-1; i++ {
			row[i] = previous[i-1] + previous[i]
		}
		c.rows = append(c.rows, row)
	}
	return c.rows[n]
}

// Number of rows computed so far.
func (c *BinomialCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}
