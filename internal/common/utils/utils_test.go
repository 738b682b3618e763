package utils

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== 编号生成测试 ====================

func TestGenerateSerialNo(t *testing.T) {
	now := time.UnixMilli(1734220800000)
	no := GenerateSerialNo(BookingNoPrefix, now)

	parts := strings.Split(no, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "BKG", parts[0])
	assert.Equal(t, "1734220800000", parts[1])

	suffix, err := strconv.Atoi(parts[2])
	require.NoError(t, err)
	assert.GreaterOrEqual(t, suffix, 0)
	assert.Less(t, suffix, 1000)
}

func TestGenerateBookingNo_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^BKG-\d{13}-\d{1,3}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, pattern, GenerateBookingNo())
	}
}

func TestGenerateOrderNo_Format(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{13}-\d{1,3}$`), GenerateOrderNo())
}

func TestRandomIntn_Range(t *testing.T) {
	for i := 0; i < 200; i++ {
		n := RandomIntn(1000)
		assert.GreaterOrEqual(t, n, int64(0))
		assert.Less(t, n, int64(1000))
	}
}

// ==================== 校验测试 ====================

func TestValidateUsername(t *testing.T) {
	assert.True(t, ValidateUsername("john123"))
	assert.False(t, ValidateUsername("john_doe"))
	assert.False(t, ValidateUsername("john doe"))
	assert.False(t, ValidateUsername(""))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "john@example.com", NormalizeEmail("  John@Example.COM "))
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 597.0, RoundMoney(3*199))
	assert.Equal(t, 38.97, RoundMoney(12.99*3))
	assert.Equal(t, 0.3, RoundMoney(0.1+0.2))
}

// ==================== 切片辅助测试 ====================

func TestContainsAndUnique(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains([]int{1, 2}, 3))
	assert.Equal(t, []string{"suite", "single"}, Unique([]string{"suite", "single", "suite"}))
}

// ==================== 分页测试 ====================

func TestPagination_Normalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Pagination
		wantPage  int
		wantLimit int
	}{
		{"zero values", Pagination{}, 1, 10},
		{"negative page", Pagination{Page: -3, Limit: 5}, 1, 5},
		{"limit capped", Pagination{Page: 2, Limit: 500}, 2, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Normalize()
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
		})
	}
}

func TestPagination_GetOffset(t *testing.T) {
	p := Pagination{Page: 3, Limit: 10}
	assert.Equal(t, 20, p.GetOffset())
}

// ==================== 时间解析测试 ====================

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 12, 15, 14, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-12-15T14:00:00Z", "2024-12-15T22:00:00+08:00", "2024-12-15 14:00:00", "2024-12-15T14:00:00", " 2024-12-15 14:00 "} {
		got, ok := ParseTime(s)
		require.True(t, ok, s)
		assert.Equal(t, want, got, s)
	}

	got, ok := ParseTime("2024-12-15")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), got)

	_, ok = ParseTime("")
	assert.False(t, ok)
	_, ok = ParseTime("15/12/2024")
	assert.False(t, ok)
}
