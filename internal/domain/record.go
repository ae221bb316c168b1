package domain

import (
	"strconv"
	"strings"
)

// Record: строка произвольной коллекции: имя колонки -> значение.
// Схему ядро не навязывает, каждая доменная таблица определяет свои колонки сама.
type Record map[string]any

// Result описывает результат мутации, который вернул бэкенд.
type Result struct {
	RowsAffected int64 `json:"affected_rows"`
	LastInsertID int64 `json:"insert_id,omitempty"`
}

// Имена коллекций витрины. Таблицы создаются bootstrap-ом до первого обращения к ядру.
const (
	TableUsers         = "users"
	TableProducts      = "frozen_products"
	TableCategories    = "categories"
	TableOrders        = "orders"
	TableContacts      = "contacts"
	TableNotifications = "notifications"
)

// Int64 достает целое из значения колонки. Драйверы отдают числа по-разному:
// sqlite: int64, mysql, []byte, после JSON, float64.
func Int64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case []byte:
		return parseInt(string(n))
	case string:
		return parseInt(n)
	default:
		return 0, false
	}
}

// Float64: то же самое для дробных колонок (price, rating_number).
func Float64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case []byte:
		return parseFloat(string(n))
	case string:
		return parseFloat(n)
	default:
		return 0, false
	}
}

// String возвращает строковое представление колонки, nil -> "".
func String(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		// mysql отдает DECIMAL как "12.00"
		f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if ferr != nil {
			return 0, false
		}
		return int64(f), true
	}
	return n, true
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int64List читает JSON-массив id (rating_users, likes_users). Не-числа пропускаются.
func Int64List(v any) []int64 {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int64, 0, len(list))
	for _, item := range list {
		if n, ok := Int64(item); ok {
			out = append(out, n)
		}
	}
	return out
}
