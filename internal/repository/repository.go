// Package repository 提供数据访问层
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation PostgreSQL 唯一约束冲突错误码
const pgUniqueViolation = "23505"

// IsDuplicateKey 判断是否唯一键冲突
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// IsNotFound 判断记录是否不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// sortClause 按白名单生成排序子句，未知字段使用默认字段
func sortClause(columns map[string]string, sortBy, defaultSort, sortOrder, defaultOrder string) string {
	column, ok := columns[sortBy]
	if !ok {
		column = columns[defaultSort]
	}
	order := strings.ToLower(sortOrder)
	if order != "asc" && order != "desc" {
		order = defaultOrder
	}
	return column + " " + strings.ToUpper(order) + ", id " + strings.ToUpper(order)
}

// likePattern 构造大小写不敏感的子串匹配模式
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// conn 事务内使用 tx，否则使用仓储自身连接
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
