package pipeline

// Stage — одна стадия конвейера. Набор вариантов закрыт: Match, Join,
// Compute, Project, Sort, Paginate.
type Stage interface {
	stageName() string
}

// Match в начале конвейера загружает документы коллекции From по фильтру Where.
// В середине конвейера отбрасывает документы, не прошедшие Where (From игнорируется).
type Match struct {
	From  string
	Where Filter
}

// Join присоединяет к каждому документу записи коллекции From,
// у которых ForeignField равен значению LocalField документа.
//
// Если LocalField содержит []string, порядок присоединённых записей
// повторяет порядок списка. Stages выполняются один раз над всем загруженным
// множеством и должны быть подокументными (Paginate в них запрещён).
// Single сворачивает результат до первой записи или nil.
type Join struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Where        Filter
	Stages       []Stage
	Single       bool
}

// Compute записывает в Field значение выражения Expr.
type Compute struct {
	Field string
	Expr  Expr
}

// Project оставляет только перечисленные поля. Секретные поля
// отбрасываются даже если перечислены.
type Project struct {
	Fields []string
}

// SortKey — ключ сортировки.
type SortKey struct {
	Field string
	Desc  bool
}

// Sort стабильно сортирует документы по Keys. Если ключи не содержат
// created_at и id, они добавляются в конец как tie-break в направлении первого ключа.
type Sort struct {
	Keys []SortKey
}

// Paginate вырезает страницу. Допустим только последней стадией верхнего уровня.
type Paginate struct {
	Page  int
	Limit int
}

func (Match) stageName() string    { return "match" }
func (Join) stageName() string     { return "join" }
func (Compute) stageName() string  { return "compute" }
func (Project) stageName() string  { return "project" }
func (Sort) stageName() string     { return "sort" }
func (Paginate) stageName() string { return "paginate" }
