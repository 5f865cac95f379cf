package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 10

// Paginate slices items by the page and page_size query parameters and
// writes them with pagination metadata.
func Paginate[T any](c *gin.Context, items []T) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	total := len(items)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	meta := NewPaginationMeta(int64(total), page, pageSize)
	Success(c, http.StatusOK, items[start:end], &meta)
}
