package pipeline

// Expr вычисляет значение по документу.
type Expr interface {
	Eval(d Doc) any
}

// ExprFunc адаптирует функцию к Expr.
type ExprFunc func(d Doc) any

func (f ExprFunc) Eval(d Doc) any { return f(d) }

// Size — мощность присоединённого множества field. Пустое или отсутствующее множество даёт 0.
func Size(field string) Expr {
	return ExprFunc(func(d Doc) any {
		return int64(len(d.Docs(field)))
	})
}

// HasMember проверяет, что value встречается в поле key одной из записей множества field.
// Пустой value (зритель не известен) сразу даёт false, без сравнения.
func HasMember(field, key, value string) Expr {
	return ExprFunc(func(d Doc) any {
		if value == "" {
			return false
		}
		for _, e := range d.Docs(field) {
			if e.String(key) == value {
				return true
			}
		}
		return false
	})
}

// First — первая запись множества field или nil, если множество пусто.
func First(field string) Expr {
	return ExprFunc(func(d Doc) any {
		set := d.Docs(field)
		if len(set) == 0 {
			return nil
		}
		return set[0]
	})
}

// FirstField — значение key первой записи множества field или nil.
func FirstField(field, key string) Expr {
	return ExprFunc(func(d Doc) any {
		set := d.Docs(field)
		if len(set) == 0 {
			return nil
		}
		v, ok := set[0][key]
		if !ok {
			return nil
		}
		return v
	})
}

// Sum — сумма целочисленного поля key по множеству field.
func Sum(field, key string) Expr {
	return ExprFunc(func(d Doc) any {
		var total int64
		for _, e := range d.Docs(field) {
			total += e.Int(key)
		}
		return total
	})
}
