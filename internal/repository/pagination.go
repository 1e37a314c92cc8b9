package repository

import (
	"strconv"

	"gorm.io/gorm"
)

const (
	RecordsPageSize    = 20 // 历史对局默认每页条数
	MaxRecordsPageSize = 50
)

// Pagination 历史对局分页，Total/Pages/HasMore 在查询后填充
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	Pages    int   `json:"pages"`
	HasMore  bool  `json:"has_more"`
}

// NewPagination 非法页码回到第一页，每页条数限制在 [1, MaxRecordsPageSize]
func NewPagination(page, pageSize int) *Pagination {
	if page <= 0 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = RecordsPageSize
	case pageSize > MaxRecordsPageSize:
		pageSize = MaxRecordsPageSize
	}
	return &Pagination{Page: page, PageSize: pageSize}
}

// ParsePagination 解析查询参数，无法解析的值按缺省处理
func ParsePagination(page, pageSize string) *Pagination {
	p, _ := strconv.Atoi(page)
	size, _ := strconv.Atoi(pageSize)
	return NewPagination(p, size)
}

func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// SetTotal 记录总条数并计算总页数
func (p *Pagination) SetTotal(total int64) {
	p.Total = total
	p.Pages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	p.HasMore = p.Page < p.Pages
}

// Paginate 分页 scope
func Paginate(p *Pagination) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}

// BaseRepo 仓储共用的数据库句柄
type BaseRepo struct {
	db *gorm.DB
}

func NewBaseRepo(db *gorm.DB) *BaseRepo {
	return &BaseRepo{db: db}
}
