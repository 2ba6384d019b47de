package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// Source — возможность хранилища выполнять отфильтрованный скан коллекции.
type Source interface {
	Find(ctx context.Context, collection string, where Filter) ([]Doc, error)
}

// Op — оператор условия фильтра.
type Op int

const (
	OpEq Op = iota + 1
	OpIn
	OpText
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpIn:
		return "in"
	case OpText:
		return "text"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Cond — одно условие фильтра.
type Cond struct {
	Op     Op
	Field  string
	Value  any
	Values []string
	// Fields — поля полнотекстового условия (OpText).
	Fields []string
}

// Filter — конъюнкция условий; пустой фильтр пропускает всё.
type Filter []Cond

// Where собирает фильтр из условий.
func Where(conds ...Cond) Filter {
	return Filter(conds)
}

// Eq — точное совпадение значения поля.
func Eq(field string, value any) Cond {
	return Cond{Op: OpEq, Field: field, Value: value}
}

// In — значение поля входит в values. Пустой values не пропускает ничего.
func In(field string, values []string) Cond {
	return Cond{Op: OpIn, Field: field, Values: values}
}

// Text — регистронезависимый поиск подстроки query хотя бы в одном из fields.
func Text(query string, fields ...string) Cond {
	return Cond{Op: OpText, Value: query, Fields: fields}
}

// Matches проверяет документ на соответствие фильтру.
func (f Filter) Matches(d Doc) bool {
	for _, c := range f {
		if !c.matches(d) {
			return false
		}
	}
	return true
}

func (c Cond) matches(d Doc) bool {
	switch c.Op {
	case OpEq:
		return equal(d[c.Field], c.Value)
	case OpIn:
		s, ok := d[c.Field].(string)
		if !ok {
			return false
		}
		for _, v := range c.Values {
			if v == s {
				return true
			}
		}
		return false
	case OpText:
		q, _ := c.Value.(string)
		q = strings.ToLower(strings.TrimSpace(q))
		if q == "" {
			return true
		}
		for _, f := range c.Fields {
			if strings.Contains(strings.ToLower(d.String(f)), q) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ai, ok := asInt(a); ok {
		bi, ok := asInt(b)
		return ok && ai == bi
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case fmt.Stringer:
		return av.String() == fmt.Sprint(b)
	default:
		return false
	}
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}
