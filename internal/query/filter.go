// Package query строит параметризованные фрагменты SQL (WHERE/SET/ORDER/LIMIT) для
// универсального хранилища записей. Значения никогда не интерполируются в текст запроса:
// каждый плейсхолдер соответствует ровно одному элементу списка параметров.
package query

import (
	"sort"
	"strings"
)

// ConditionKind: тег варианта условия.
type ConditionKind int

const (
	KindEq ConditionKind = iota
	KindPriceFloor
	KindPriceCeiling
	KindLike
)

// PriceColumn: колонка, к которой относятся диапазонные условия.
const PriceColumn = "price"

// Зарезервированные ключи map-фильтров (наследие формы поиска витрины).
const (
	KeyMinPrice = "minPrice"
	KeyMaxPrice = "maxPrice"
)

// Condition: одно условие фильтра. Column пуст для диапазонных условий.
type Condition struct {
	Kind   ConditionKind
	Column string
	Value  any
}

// Filter: упорядоченный список условий, объединяемых через AND.
// Порядок условий = порядок плейсхолдеров = порядок параметров.
type Filter []Condition

// Eq: column = ?
func Eq(column string, value any) Condition {
	return Condition{Kind: KindEq, Column: column, Value: value}
}

// PriceFloor: price >= ?
func PriceFloor(value any) Condition {
	return Condition{Kind: KindPriceFloor, Column: PriceColumn, Value: value}
}

// PriceCeiling: price <= ?
func PriceCeiling(value any) Condition {
	return Condition{Kind: KindPriceCeiling, Column: PriceColumn, Value: value}
}

// LikeEscape: символ экранирования в LIKE. Обратный слеш не годится: в mysql
// литерал '\' без NO_BACKSLASH_ESCAPES ломает запрос.
const LikeEscape = '!'

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Like: column LIKE ? ESCAPE '!' (шаблон передается параметром целиком, вместе с %).
// Литеральные %, _ и ! в шаблоне нужно экранировать через EscapeLike.
func Like(column, pattern string) Condition {
	return Condition{Kind: KindLike, Column: column, Value: pattern}
}

// Contains: подстрочный поиск по пользовательскому тексту. Подстановочные символы
// из text ищутся буквально.
func Contains(column, text string) Condition {
	return Like(column, "%"+EscapeLike(text)+"%")
}

// EscapeLike экранирует %, _ и символ экранирования.
func EscapeLike(text string) string {
	return likeEscaper.Replace(text)
}

// Where собирает фильтр из условий.
func Where(conds ...Condition) Filter { return Filter(conds) }

// And возвращает новый фильтр с добавленными условиями.
func (f Filter) And(conds ...Condition) Filter {
	out := make(Filter, 0, len(f)+len(conds))
	out = append(out, f...)
	return append(out, conds...)
}

// IsEmpty: нет ни одного условия.
func (f Filter) IsEmpty() bool { return len(f) == 0 }

// Map отдает фильтр в виде column -> value для журнала аудита.
// Диапазонные условия попадают под исходными ключами minPrice/maxPrice.
func (f Filter) Map() map[string]any {
	out := make(map[string]any, len(f))
	for _, c := range f {
		switch c.Kind {
		case KindPriceFloor:
			out[KeyMinPrice] = c.Value
		case KindPriceCeiling:
			out[KeyMaxPrice] = c.Value
		default:
			out[c.Column] = c.Value
		}
	}
	return out
}

// FromMap переводит "where"-объект старого формата в фильтр.
// minPrice/maxPrice всегда становятся диапазонными условиями и идут первыми,
// остальные ключи: равенства в отсортированном порядке (детерминированный SQL).
//
// Колонка, которая буквально называется minPrice, через этот адаптер недоступна -
// для нее нужно явно использовать Eq("minPrice", v).
func FromMap(where map[string]any) Filter {
	if len(where) == 0 {
		return nil
	}
	f := make(Filter, 0, len(where))
	if v, ok := where[KeyMinPrice]; ok {
		f = append(f, PriceFloor(v))
	}
	if v, ok := where[KeyMaxPrice]; ok {
		f = append(f, PriceCeiling(v))
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		if k == KeyMinPrice || k == KeyMaxPrice {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f = append(f, Eq(k, where[k]))
	}
	return f
}
