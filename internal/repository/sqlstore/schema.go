package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/query"
)

// Абстрактные типы колонок, рендерятся под диалект.
type colType int

const (
	colPK colType = iota
	colVarchar
	colText
	colInt
	colMoney   // DECIMAL(10,2)
	colRating  // DECIMAL(3,2)
	colFlag    // 0/1
	colCreated // TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)

type column struct {
	name  string
	typ   colType
	size  int    // для VARCHAR
	extra string // UNIQUE, NOT NULL, DEFAULT ...
}

type tableDef struct {
	name    string
	columns []column
}

// Структура таблиц витрины. JSON-поля (address, favourites, orderItems, messages ...)
// лежат в TEXT и кодируются пакетом codec.
var schema = []tableDef{
	{name: domain.TableUsers, columns: []column{
		{name: "id", typ: colPK},
		{name: "email", typ: colVarchar, size: 255, extra: "UNIQUE"},
		{name: "username", typ: colVarchar, size: 50, extra: "UNIQUE"},
		{name: "password", typ: colVarchar, size: 255},
		{name: "fullName", typ: colVarchar, size: 100},
		{name: "isVerified", typ: colFlag},
		{name: "isAdmin", typ: colFlag},
		{name: "phone", typ: colVarchar, size: 15},
		{name: "address", typ: colText},
		{name: "favourites", typ: colText},
		{name: "orders", typ: colText},
		{name: "privileges", typ: colText},
		{name: "role", typ: colVarchar, size: 20, extra: "DEFAULT 'user'"},
	}},
	{name: domain.TableProducts, columns: []column{
		{name: "id", typ: colPK},
		{name: "name", typ: colVarchar, size: 255},
		{name: "description", typ: colText},
		{name: "price", typ: colMoney},
		{name: "image_url", typ: colText},
		{name: "stock", typ: colInt},
		{name: "slug", typ: colVarchar, size: 100, extra: "UNIQUE NOT NULL"},
		{name: "category", typ: colVarchar, size: 100},
		{name: "detailed_images", typ: colText},
		{name: "rating_number", typ: colRating, extra: "DEFAULT 0"},
		{name: "rating_count", typ: colInt, extra: "DEFAULT 0"},
		{name: "rating_users", typ: colText},
		{name: "likes_number", typ: colInt, extra: "DEFAULT 0"},
		{name: "likes_users", typ: colText},
		{name: "favourites", typ: colText},
		{name: "favourites_number", typ: colInt, extra: "DEFAULT 0"},
		{name: "dislikes_number", typ: colInt, extra: "DEFAULT 0"},
		{name: "dislikes_users", typ: colText},
		{name: "comments", typ: colText},
		{name: "createdAt", typ: colCreated},
	}},
	{name: domain.TableCategories, columns: []column{
		{name: "id", typ: colPK},
		{name: "name", typ: colVarchar, size: 50},
		{name: "slug", typ: colVarchar, size: 50, extra: "UNIQUE"},
		{name: "description", typ: colText},
		{name: "image_url", typ: colText},
		{name: "createdAt", typ: colCreated},
	}},
	{name: domain.TableOrders, columns: []column{
		{name: "id", typ: colPK},
		{name: "customerId", typ: colInt},
		{name: "customerName", typ: colVarchar, size: 100},
		{name: "email", typ: colVarchar, size: 255},
		{name: "status", typ: colVarchar, size: 50},
		{name: "orderItems", typ: colText},
		{name: "totalAmount", typ: colMoney},
		{name: "trashed", typ: colFlag},
		{name: "finalTrashed", typ: colFlag},
		{name: "createdAt", typ: colCreated},
	}},
	{name: domain.TableContacts, columns: []column{
		{name: "id", typ: colPK},
		{name: "userId", typ: colInt},
		{name: "name", typ: colVarchar, size: 255},
		{name: "email", typ: colVarchar, size: 255, extra: "UNIQUE NOT NULL"},
		{name: "messages", typ: colText, extra: "NOT NULL"},
		{name: "createdAt", typ: colCreated},
	}},
	{name: domain.TableNotifications, columns: []column{
		{name: "id", typ: colPK},
		{name: domain.ColActorID, typ: colInt},
		{name: domain.ColActorName, typ: colVarchar, size: 255},
		{name: domain.ColTitle, typ: colVarchar, size: 255},
		{name: domain.ColRawDetails, typ: colText},
		{name: domain.ColKind, typ: colVarchar, size: 10},
		{name: domain.ColSourceTable, typ: colVarchar, size: 100},
		{name: domain.ColCreatedAt, typ: colCreated},
	}},
}

// canonicalColumns: postgres приводит некавыченные идентификаторы к нижнему регистру
// (userId -> userid). При чтении возвращаем исходное написание.
var canonicalColumns = func() map[string]string {
	m := make(map[string]string)
	for _, t := range schema {
		for _, c := range t.columns {
			m[strings.ToLower(c.name)] = c.name
		}
	}
	return m
}()

func canonicalColumn(name string) string {
	if c, ok := canonicalColumns[name]; ok {
		return c
	}
	return name
}

// Bootstrap создает таблицы, если их нет. Идемпотентен; миграций нет.
func Bootstrap(ctx context.Context, db *sql.DB, dialect query.Dialect) error {
	for _, stmt := range DDL(dialect) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

// DDL: CREATE TABLE IF NOT EXISTS для каждой таблицы под диалект.
func DDL(dialect query.Dialect) []string {
	out := make([]string, 0, len(schema))
	for _, t := range schema {
		defs := make([]string, len(t.columns))
		for i, c := range t.columns {
			defs[i] = strings.TrimSpace(c.name + " " + renderType(dialect, c) + " " + c.extra)
		}
		out = append(out, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.name, strings.Join(defs, ",\n\t")))
	}
	return out
}

// TableNames: все таблицы схемы в порядке создания.
func TableNames() []string {
	names := make([]string, len(schema))
	for i, t := range schema {
		names[i] = t.name
	}
	return names
}

func renderType(d query.Dialect, c column) string {
	switch c.typ {
	case colPK:
		switch d {
		case query.Postgres:
			return "SERIAL PRIMARY KEY"
		case query.SQLite:
			return "INTEGER PRIMARY KEY AUTOINCREMENT"
		default:
			return "INT AUTO_INCREMENT PRIMARY KEY"
		}
	case colVarchar:
		return fmt.Sprintf("VARCHAR(%d)", c.size)
	case colText:
		return "TEXT"
	case colInt:
		if d == query.SQLite {
			return "INTEGER"
		}
		return "INT"
	case colMoney:
		return "DECIMAL(10, 2)"
	case colRating:
		return "DECIMAL(3, 2)"
	case colFlag:
		if d == query.Postgres {
			return "SMALLINT DEFAULT 0"
		}
		return "TINYINT(1) DEFAULT 0"
	case colCreated:
		return "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"
	}
	return "TEXT"
}
