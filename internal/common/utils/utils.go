// Package utils 提供通用工具函数
package utils

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"
	"time"
)

// 编号前缀
const (
	BookingNoPrefix = "BKG"
	OrderNoPrefix   = "ORD"
)

// GenerateSerialNo 生成业务编号
// 格式: 前缀-毫秒时间戳-0到999的随机数
func GenerateSerialNo(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%d", prefix, now.UnixMilli(), RandomIntn(1000))
}

// GenerateBookingNo 生成预订号
func GenerateBookingNo() string {
	return GenerateSerialNo(BookingNoPrefix, time.Now())
}

// GenerateOrderNo 生成订单号
func GenerateOrderNo() string {
	return GenerateSerialNo(OrderNoPrefix, time.Now())
}

// RandomIntn 返回 [0, n) 内的安全随机数
func RandomIntn(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// ValidateUsername 验证用户名（仅字母和数字）
func ValidateUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// NormalizeEmail 邮箱去空格并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RoundMoney 金额保留两位小数
func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// Contains 判断切片是否包含元素
func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// Unique 切片去重，保持原有顺序
func Unique[T comparable](slice []T) []T {
	seen := make(map[T]struct{})
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}

// TimeLayouts 接受的日期与日期时间格式，按优先级排列
var TimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime 解析日期或日期时间字符串，无时区信息时按 UTC，结果统一为 UTC
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Pagination 分页参数
type Pagination struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// 分页默认值
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// GetOffset 获取偏移量
func (p *Pagination) GetOffset() int {
	return (p.Page - 1) * p.Limit
}

// Normalize 规范化分页参数
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}
