package query

import (
	"strconv"
	"strings"

	"github.com/xela07ax/storefront-console/internal/domain"
)

// Dialect: SQL-диалект бэкенда. Билдер всегда рендерит "?", postgres переписывается в $n.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect принимает имя из конфига.
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(name))); d {
	case MySQL, Postgres, SQLite:
		return d, nil
	case "pgx", "postgresql":
		return Postgres, nil
	case "sqlite3":
		return SQLite, nil
	default:
		return "", domain.InvalidArgument("unknown database driver %q", name)
	}
}

// DriverName: имя драйвера для sql.Open.
func (d Dialect) DriverName() string {
	switch d {
	case Postgres:
		return "pgx"
	case SQLite:
		return "sqlite"
	default:
		return "mysql"
	}
}

// Rebind переписывает позиционные "?" в синтаксис диалекта.
// Единственный литерал билдера, ESCAPE '!', не содержит "?", поэтому простой замены достаточно.
func (d Dialect) Rebind(query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// ReturningID: postgres не поддерживает LastInsertId, id забираем через RETURNING.
func (d Dialect) ReturningID() bool { return d == Postgres }
