package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, ClampLimit(0, 20, 100))
	assert.Equal(t, 20, ClampLimit(-3, 20, 100))
	assert.Equal(t, 7, ClampLimit(7, 20, 100))
	assert.Equal(t, 100, ClampLimit(5000, 20, 100))
	assert.Equal(t, 100, ClampLimit(0, 500, 100))
}

func TestPaginationParams_Validate(t *testing.T) {
	p := PaginationParams{Page: 0, PageSize: 0}
	p.Validate()
	assert.Equal(t, PaginationParams{Page: 1, PageSize: DefaultPageSize}, p)
	assert.Equal(t, 0, p.Offset())

	p = PaginationParams{Page: 3, PageSize: 1000}
	p.Validate()
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 200, p.Offset())
}

func TestNewPaginatedResponse(t *testing.T) {
	res := NewPaginatedResponse[int](nil, PaginationParams{Page: 2, PageSize: 10}, 25)

	assert.Equal(t, []int{}, res.Data)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)
}
