package storage

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/GoArmGo/VideoTube/internal/core/pipeline"
)

type columnKind int

const (
	colText columnKind = iota
	colUUID
	colInt
	colBool
	colTime
	colUUIDArray
)

type column struct {
	name string
	kind columnKind
}

// table описывает коллекцию: имя таблицы и разрешённые колонки.
// Имена полей документов совпадают с именами колонок.
type table struct {
	name    string
	columns []column
}

func (t table) column(field string) (column, bool) {
	for _, c := range t.columns {
		if c.name == field {
			return c, true
		}
	}
	return column{}, false
}

func (t table) selectQuery() string {
	names := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		names = append(names, c.name)
	}
	return "SELECT " + strings.Join(names, ", ") + " FROM " + t.name
}

// buildWhere переводит фильтр конвейера в SQL-условие.
// none=true означает, что фильтр заведомо ничего не пропускает
// (пустой In или некорректный UUID) и запрос можно не выполнять.
func buildWhere(t table, where pipeline.Filter) (clause string, args []any, none bool, err error) {
	var parts []string
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, cond := range where {
		switch cond.Op {
		case pipeline.OpEq:
			col, ok := t.column(cond.Field)
			if !ok {
				return "", nil, false, unknownField(t.name, cond.Field)
			}
			v := cond.Value
			if col.kind == colUUID {
				id, ok := asUUID(v)
				if !ok {
					return "", nil, true, nil
				}
				v = id
			}
			parts = append(parts, col.name+" = "+next(v))

		case pipeline.OpIn:
			col, ok := t.column(cond.Field)
			if !ok {
				return "", nil, false, unknownField(t.name, cond.Field)
			}
			values := cond.Values
			if col.kind == colUUID {
				values = validUUIDs(values)
			}
			if len(values) == 0 {
				return "", nil, true, nil
			}
			if col.kind == colUUID {
				parts = append(parts, col.name+" = ANY("+next(pq.Array(values))+"::uuid[])")
			} else {
				parts = append(parts, col.name+" = ANY("+next(pq.Array(values))+")")
			}

		case pipeline.OpText:
			q, _ := cond.Value.(string)
			q = strings.TrimSpace(q)
			if q == "" {
				continue
			}
			ph := next("%" + escapeLike(q) + "%")
			var ors []string
			for _, f := range cond.Fields {
				col, ok := t.column(f)
				if !ok || col.kind != colText {
					return "", nil, false, unknownField(t.name, f)
				}
				ors = append(ors, col.name+" ILIKE "+ph)
			}
			if len(ors) > 0 {
				parts = append(parts, "("+strings.Join(ors, " OR ")+")")
			}

		default:
			return "", nil, false, fmt.Errorf("unsupported filter op %s", cond.Op)
		}
	}

	if len(parts) == 0 {
		return "", args, false, nil
	}
	return " WHERE " + strings.Join(parts, " AND "), args, false, nil
}

func asUUID(v any) (uuid.UUID, bool) {
	switch id := v.(type) {
	case uuid.UUID:
		return id, id != uuid.Nil
	case string:
		parsed, err := uuid.Parse(id)
		return parsed, err == nil
	default:
		return uuid.Nil, false
	}
}

func validUUIDs(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, err := uuid.Parse(v); err == nil {
			out = append(out, v)
		}
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
