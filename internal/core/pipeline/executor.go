package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/GoArmGo/VideoTube/internal/core/apperrors"
	"github.com/GoArmGo/VideoTube/internal/core/pagination"
)

// ErrInvalidPipeline — конвейер собран с нарушением правил порядка стадий.
var ErrInvalidPipeline = errors.New("invalid pipeline")

// PageInfo — метаданные страницы, заполняемые стадией Paginate.
type PageInfo struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// Result — результат выполнения конвейера.
type Result struct {
	Docs []Doc
	// Page заполнен, только если конвейер заканчивается стадией Paginate.
	Page *PageInfo
}

// Executor интерпретирует стадии поверх Source.
type Executor struct {
	src Source
}

// NewExecutor создаёт исполнитель конвейеров.
func NewExecutor(src Source) *Executor {
	return &Executor{src: src}
}

// Run выполняет конвейер. Первая стадия обязана быть Match с коллекцией.
// При отмене контекста частичный результат не возвращается.
func (e *Executor) Run(ctx context.Context, stages ...Stage) (Result, error) {
	if err := validate(stages); err != nil {
		return Result{}, err
	}

	m := stages[0].(Match)
	docs, err := e.src.Find(ctx, m.From, m.Where)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, st := range stages[1:] {
		if err := ctx.Err(); err != nil {
			return Result{}, apperrors.Unavailable(err, "pipeline aborted")
		}
		if p, ok := st.(Paginate); ok {
			page := pagination.Paginate(docs, p.Page, p.Limit)
			docs = page.Items
			res.Page = &PageInfo{
				Page:       page.Page,
				Limit:      page.Limit,
				TotalCount: page.TotalCount,
				TotalPages: page.TotalPages,
			}
			continue
		}
		docs, err = e.apply(ctx, st, docs)
		if err != nil {
			return Result{}, err
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, apperrors.Unavailable(err, "pipeline aborted")
	}

	scrub(docs)
	res.Docs = docs
	return res, nil
}

func validate(stages []Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("%w: no stages", ErrInvalidPipeline)
	}
	m, ok := stages[0].(Match)
	if !ok || m.From == "" {
		return fmt.Errorf("%w: first stage must be a match with a collection", ErrInvalidPipeline)
	}
	for i, st := range stages[1:] {
		if _, ok := st.(Paginate); ok && i != len(stages)-2 {
			return fmt.Errorf("%w: paginate must be the last stage", ErrInvalidPipeline)
		}
		if err := validateNested(st); err != nil {
			return err
		}
	}
	return nil
}

func validateNested(st Stage) error {
	j, ok := st.(Join)
	if !ok {
		return nil
	}
	if j.From == "" || j.LocalField == "" || j.ForeignField == "" || j.As == "" {
		return fmt.Errorf("%w: join needs from, local field, foreign field and alias", ErrInvalidPipeline)
	}
	for _, nested := range j.Stages {
		if _, ok := nested.(Paginate); ok {
			return fmt.Errorf("%w: paginate is not allowed inside join %q", ErrInvalidPipeline, j.As)
		}
		if err := validateNested(nested); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) apply(ctx context.Context, st Stage, docs []Doc) ([]Doc, error) {
	switch s := st.(type) {
	case Match:
		out := docs[:0:0]
		for _, d := range docs {
			if s.Where.Matches(d) {
				out = append(out, d)
			}
		}
		return out, nil
	case Join:
		return e.join(ctx, s, docs)
	case Compute:
		for _, d := range docs {
			d[s.Field] = s.Expr.Eval(d)
		}
		return docs, nil
	case Project:
		return project(s, docs), nil
	case Sort:
		sortDocs(s, docs)
		return docs, nil
	default:
		return nil, fmt.Errorf("%w: unsupported stage %s", ErrInvalidPipeline, st.stageName())
	}
}

func (e *Executor) join(ctx context.Context, j Join, docs []Doc) ([]Doc, error) {
	keys := localKeys(docs, j.LocalField)

	var foreign []Doc
	if len(keys) > 0 {
		where := append(Filter{In(j.ForeignField, keys)}, j.Where...)
		var err error
		foreign, err = e.src.Find(ctx, j.From, where)
		if err != nil {
			return nil, err
		}
		for _, st := range j.Stages {
			foreign, err = e.apply(ctx, st, foreign)
			if err != nil {
				return nil, err
			}
		}
	}

	index := make(map[string][]Doc, len(foreign))
	for _, f := range foreign {
		k := f.String(j.ForeignField)
		index[k] = append(index[k], f)
	}

	for _, d := range docs {
		joined := []Doc{}
		switch local := d[j.LocalField].(type) {
		case string:
			joined = append(joined, index[local]...)
		case []string:
			for _, k := range local {
				joined = append(joined, index[k]...)
			}
		}
		if j.Single {
			if len(joined) > 0 {
				d[j.As] = joined[0]
			} else {
				d[j.As] = nil
			}
			continue
		}
		d[j.As] = joined
	}
	return docs, nil
}

// localKeys собирает уникальные значения LocalField в порядке появления.
func localKeys(docs []Doc, field string) []string {
	seen := make(map[string]struct{})
	var keys []string
	add := func(k string) {
		if k == "" {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for _, d := range docs {
		switch v := d[field].(type) {
		case string:
			add(v)
		case []string:
			for _, k := range v {
				add(k)
			}
		}
	}
	return keys
}

func project(p Project, docs []Doc) []Doc {
	out := make([]Doc, 0, len(docs))
	for _, d := range docs {
		nd := make(Doc, len(p.Fields))
		for _, f := range p.Fields {
			if IsSecret(f) {
				continue
			}
			if v, ok := d[f]; ok {
				nd[f] = v
			}
		}
		out = append(out, nd)
	}
	return out
}

func sortDocs(s Sort, docs []Doc) {
	keys := withTieBreak(s.Keys)
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			c := compare(docs[i][k.Field], docs[j][k.Field])
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func withTieBreak(keys []SortKey) []SortKey {
	desc := len(keys) > 0 && keys[0].Desc
	if len(keys) == 0 {
		desc = true
	}
	out := append([]SortKey(nil), keys...)
	for _, f := range []string{"created_at", "id"} {
		present := false
		for _, k := range keys {
			if k.Field == f {
				present = true
				break
			}
		}
		if !present {
			out = append(out, SortKey{Field: f, Desc: desc})
		}
	}
	return out
}

// compare упорядочивает значения документов; nil меньше любого значения.
func compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if ai, ok := asInt(a); ok {
		if bi, ok := asInt(b); ok {
			return cmpOrdered(ai, bi)
		}
	}
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmpOrdered(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
