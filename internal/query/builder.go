package query

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/xela07ax/storefront-console/internal/codec"
	"github.com/xela07ax/storefront-console/internal/domain"
)

// Имена таблиц и колонок приходят от вызывающего кода и подставляются в текст SQL,
// поэтому допускаются только простые идентификаторы.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Направления сортировки.
const (
	Asc  = "ASC"
	Desc = "DESC"
)

// ValidIdent проверяет имя таблицы или колонки.
func ValidIdent(name string) error {
	if !identPattern.MatchString(name) {
		return domain.InvalidArgument("bad identifier %q", name)
	}
	return nil
}

// BuildWhere рендерит "WHERE a = ? AND price >= ? ...". Для пустого фильтра пустая строка.
func BuildWhere(f Filter) (string, []any, error) {
	if f.IsEmpty() {
		return "", nil, nil
	}

	conditions := make([]string, 0, len(f))
	args := make([]any, 0, len(f))
	for _, c := range f {
		var expr string
		switch c.Kind {
		case KindPriceFloor:
			expr = PriceColumn + " >= ?"
		case KindPriceCeiling:
			expr = PriceColumn + " <= ?"
		case KindEq:
			if err := ValidIdent(c.Column); err != nil {
				return "", nil, err
			}
			expr = c.Column + " = ?"
		case KindLike:
			if err := ValidIdent(c.Column); err != nil {
				return "", nil, err
			}
			expr = c.Column + " LIKE ? ESCAPE '" + string(LikeEscape) + "'"
		default:
			return "", nil, domain.InvalidArgument("unknown condition kind %d", c.Kind)
		}
		conditions = append(conditions, expr)
		args = append(args, c.Value)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args, nil
}

// BuildSet рендерит "SET a = ?, b = ?" для UPDATE. Колонки сортируются, чтобы текст
// запроса не зависел от порядка обхода map. Значения проходят через codec.Encode.
func BuildSet(data domain.Record) (string, []any, error) {
	if len(data) == 0 {
		return "", nil, domain.InvalidArgument("data cannot be empty for update")
	}

	cols, err := sortedColumns(data)
	if err != nil {
		return "", nil, err
	}
	sets := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		sets[i] = col + " = ?"
		args[i] = codec.Encode(data[col])
	}
	return "SET " + strings.Join(sets, ", "), args, nil
}

// BuildInsert рендерит полный INSERT для одной записи.
func BuildInsert(table string, data domain.Record) (string, []any, error) {
	if err := ValidIdent(table); err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, domain.InvalidArgument("data cannot be empty for insert")
	}

	cols, err := sortedColumns(data)
	if err != nil {
		return "", nil, err
	}
	args := make([]any, len(cols))
	for i, col := range cols {
		args[i] = codec.Encode(data[col])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders(len(cols)))
	return query, args, nil
}

// BuildOrderLimit рендерит "ORDER BY col DIR LIMIT ? OFFSET ?".
// limit и offset всегда идут последними параметрами. Пустой orderBy: без сортировки.
func BuildOrderLimit(orderBy, direction string, limit, offset int) (string, []any, error) {
	if limit < 0 || offset < 0 {
		return "", nil, domain.InvalidArgument("limit and offset must be non-negative")
	}

	var b strings.Builder
	if orderBy != "" {
		if err := ValidIdent(orderBy); err != nil {
			return "", nil, err
		}
		dir := strings.ToUpper(strings.TrimSpace(direction))
		if dir == "" {
			dir = Asc
		}
		if dir != Asc && dir != Desc {
			return "", nil, domain.InvalidArgument("order direction must be ASC or DESC, got %q", direction)
		}
		fmt.Fprintf(&b, "ORDER BY %s %s ", orderBy, dir)
	}
	b.WriteString("LIMIT ? OFFSET ?")
	return b.String(), []any{limit, offset}, nil
}

// BuildIn рендерит "WHERE column IN (?, ?, ...)".
func BuildIn(column string, values []any) (string, []any, error) {
	if err := ValidIdent(column); err != nil {
		return "", nil, err
	}
	if len(values) == 0 {
		return "", nil, domain.InvalidArgument("ids array cannot be empty")
	}
	args := make([]any, len(values))
	copy(args, values)
	return fmt.Sprintf("WHERE %s IN (%s)", column, placeholders(len(values))), args, nil
}

func sortedColumns(data domain.Record) ([]string, error) {
	cols := make([]string, 0, len(data))
	for col := range data {
		if err := ValidIdent(col); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
