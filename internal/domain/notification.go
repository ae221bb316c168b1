package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// AuditKind: вид мутации, зафиксированной в журнале.
type AuditKind string

const (
	AuditAdded   AuditKind = "added"
	AuditUpdated AuditKind = "updated"
	AuditDeleted AuditKind = "deleted"
)

// AuditRecord: одна наблюдаемая мутация (таблица notifications).
// Создается синхронно побочным эффектом Create/Update/Delete/DeleteAll, никогда не обновляется.
type AuditRecord struct {
	ID          int64     `json:"id"`
	ActorID     *int64    `json:"userId"`   // nil, запись от имени системы
	ActorName   *string   `json:"username"` // nil вместе с ActorID
	Title       string    `json:"title"`
	Kind        AuditKind `json:"type"`
	SourceTable string    `json:"tableName"`
	RawDetails  string    `json:"raw_details"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Колонки таблицы notifications.
const (
	ColActorID     = "userId"
	ColActorName   = "username"
	ColTitle       = "title"
	ColKind        = "type"
	ColSourceTable = "tableName"
	ColRawDetails  = "raw_details"
	ColCreatedAt   = "createdAt"
)

// AuditTitle формирует человекочитаемый заголовок записи журнала.
func AuditTitle(kind AuditKind, table string, bulk bool) string {
	switch {
	case bulk:
		return fmt.Sprintf("All records in %q deleted", table)
	case kind == AuditAdded:
		return fmt.Sprintf("New %q added", table)
	case kind == AuditUpdated:
		return fmt.Sprintf("Record in %q updated", table)
	default:
		return fmt.Sprintf("Record in %q deleted", table)
	}
}

// ToRecord превращает запись журнала в набор колонок для вставки.
// createdAt не передается: его проставляет хранилище (DEFAULT CURRENT_TIMESTAMP).
func (a AuditRecord) ToRecord() Record {
	rec := Record{
		ColActorID:     nil,
		ColActorName:   nil,
		ColTitle:       a.Title,
		ColKind:        string(a.Kind),
		ColSourceTable: a.SourceTable,
		ColRawDetails:  a.RawDetails,
	}
	if a.ActorID != nil {
		rec[ColActorID] = *a.ActorID
	}
	if a.ActorName != nil {
		rec[ColActorName] = *a.ActorName
	}
	return rec
}

// AuditRecordFromRow собирает запись журнала из декодированной строки.
func AuditRecordFromRow(row Record) AuditRecord {
	a := AuditRecord{
		Title:       String(row[ColTitle]),
		Kind:        AuditKind(String(row[ColKind])),
		SourceTable: String(row[ColSourceTable]),
		RawDetails:  rawString(row[ColRawDetails]),
	}
	if id, ok := Int64(row["id"]); ok {
		a.ID = id
	}
	if id, ok := Int64(row[ColActorID]); ok && id != 0 {
		a.ActorID = &id
	}
	if name := String(row[ColActorName]); name != "" {
		a.ActorName = &name
	}
	if ts, ok := row[ColCreatedAt].(time.Time); ok {
		a.CreatedAt = ts
	}
	return a
}

// raw_details после декодера приходит уже разобранным JSON, сериализуем обратно.
func rawString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string, []byte:
		return String(t)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
