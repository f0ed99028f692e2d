package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaginationDefaults(t *testing.T) {
	p := ParsePagination(url.Values{})
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.Offset)
}

func TestParsePaginationClamps(t *testing.T) {
	p := ParsePagination(url.Values{"limit": {"500"}, "page": {"3"}})
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.Offset)

	p = ParsePagination(url.Values{"limit": {"-4"}, "page": {"0"}})
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 1, p.Page)

	p = ParsePagination(url.Values{"limit": {"abc"}, "page": {"xyz"}})
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 1, p.Page)
}

func TestComputeMeta(t *testing.T) {
	p := ParsePagination(url.Values{"limit": {"10"}, "page": {"2"}})
	p.ComputeMeta(25)

	assert.Equal(t, 25, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p.Page = 3
	p.ComputeMeta(25)
	assert.False(t, p.HasNext)
}
