package sqlstore

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/xela07ax/storefront-console/internal/codec"
	"github.com/xela07ax/storefront-console/internal/domain"
)

// scanRecords читает курсор в map column -> value и прогоняет значения через codec.
// foldedNames: бэкенд вернул имена колонок в нижнем регистре (postgres).
// Вызывающий закрывает rows.
func scanRecords(rows *sql.Rows, foldedNames bool) ([]domain.Record, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if foldedNames {
		for i, c := range cols {
			cols[i] = canonicalColumn(c)
		}
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	out := make([]domain.Record, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(domain.Record, len(cols))
		for i, col := range cols {
			rec[col] = codec.Decode(normalize(values[i], types[i]))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// normalize: mysql в текстовом протоколе отдает числа байтами ("42"),
// без этого decode оставил бы id строкой.
func normalize(v any, ct *sql.ColumnType) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	s := string(b)
	switch typeName := strings.ToUpper(ct.DatabaseTypeName()); {
	case strings.Contains(typeName, "INT"):
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case typeName == "DECIMAL", typeName == "NUMERIC", typeName == "FLOAT", typeName == "DOUBLE", typeName == "REAL":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case strings.Contains(typeName, "BLOB"), typeName == "BINARY", typeName == "VARBINARY":
		// бинарные колонки отдаем как есть
		return b
	}
	return s
}
