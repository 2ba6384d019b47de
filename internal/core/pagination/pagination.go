package pagination

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Page — окно упорядоченной последовательности вместе с метаданными.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// Normalize заменяет неположительные page/limit значениями по умолчанию.
func Normalize(page, limit int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return page, limit
}

// Paginate вырезает страницу [skip, skip+limit) из уже отсортированных items.
// Порядок items должен содержать детерминированный tie-break, иначе соседние
// страницы могут пересекаться.
func Paginate[T any](items []T, page, limit int) Page[T] {
	page, limit = Normalize(page, limit)

	total := len(items)

	// Страница вне диапазона проверяется делением, до умножения,
	// чтобы (page-1)*limit не переполнялся на больших значениях.
	window := []T{}
	if total > 0 && page-1 <= (total-1)/limit {
		skip := (page - 1) * limit
		end := skip + min(limit, total-skip)
		window = items[skip:end]
	}

	return Page[T]{
		Items:      window,
		Page:       page,
		Limit:      limit,
		TotalCount: total,
		TotalPages: TotalPages(total, limit),
	}
}

// TotalPages считает количество страниц для total элементов.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return pages
}
