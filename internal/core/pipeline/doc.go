// Package pipeline исполняет конвейеры композиции read-моделей:
// упорядоченные стадии Match → Join → Compute → Project → Sort → Paginate
// поверх хранилища сущностей.
package pipeline

import (
	"time"
)

// Doc — документ, проходящий через стадии конвейера.
// Идентификаторы хранятся строками, время — time.Time, счётчики — int64,
// упорядоченные списки идентификаторов — []string, результаты Join — []Doc или Doc.
type Doc map[string]any

// Clone делает поверхностную копию документа.
func (d Doc) Clone() Doc {
	out := make(Doc, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func (d Doc) String(key string) string {
	s, _ := d[key].(string)
	return s
}

func (d Doc) Int(key string) int64 {
	switch v := d[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func (d Doc) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

func (d Doc) Time(key string) time.Time {
	t, _ := d[key].(time.Time)
	return t
}

func (d Doc) Strings(key string) []string {
	s, _ := d[key].([]string)
	return s
}

// Docs возвращает присоединённое множество; отсутствующее поле — пустое множество.
func (d Doc) Docs(key string) []Doc {
	s, _ := d[key].([]Doc)
	return s
}

// Doc возвращает вложенный документ или nil, если его нет.
func (d Doc) Doc(key string) Doc {
	switch v := d[key].(type) {
	case Doc:
		return v
	case map[string]any:
		return Doc(v)
	default:
		return nil
	}
}

// Has сообщает, что поле присутствует и не равно nil.
func (d Doc) Has(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}

// secretFields никогда не покидают конвейер, какая бы стадия их ни запросила.
var secretFields = map[string]struct{}{
	"password":      {},
	"password_hash": {},
	"refresh_token": {},
}

// IsSecret сообщает, что поле относится к учётным данным.
func IsSecret(field string) bool {
	_, ok := secretFields[field]
	return ok
}

// scrub рекурсивно удаляет секретные поля из документов.
func scrub(docs []Doc) {
	for _, d := range docs {
		scrubDoc(d)
	}
}

func scrubDoc(d Doc) {
	if d == nil {
		return
	}
	for k, v := range d {
		if IsSecret(k) {
			delete(d, k)
			continue
		}
		switch nested := v.(type) {
		case Doc:
			scrubDoc(nested)
		case []Doc:
			scrub(nested)
		}
	}
}
