package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorPrivileges(t *testing.T) {
	tests := []struct {
		name       string
		actor      ActorContext
		privileged bool
		top        bool
	}{
		{name: "anonymous", actor: Anonymous()},
		{name: "user", actor: ActorContext{ID: 1, Role: RoleUser}},
		{name: "editor", actor: ActorContext{ID: 2, Role: RoleEditor}, privileged: true},
		{name: "custom", actor: ActorContext{ID: 3, Role: RoleCustom}, privileged: true},
		{name: "admin", actor: ActorContext{ID: 4, Role: RoleAdmin}, privileged: true},
		{name: "super admin", actor: ActorContext{ID: 5, Role: RoleSuperAdmin}, privileged: true, top: true},
		{name: "role without id", actor: ActorContext{Role: RoleSuperAdmin}},
		{name: "unknown role", actor: ActorContext{ID: 6, Role: "root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.privileged, tt.actor.IsPrivileged())
			assert.Equal(t, tt.top, tt.actor.IsTopPrivileged())
		})
	}
}

func TestClaimsDowngradeUnknownRole(t *testing.T) {
	c := &CustomClaims{UserID: 9, Username: "x", Role: "god"}
	assert.Equal(t, RoleUser, c.Actor().Role)
}

func TestNumericColumns(t *testing.T) {
	for _, v := range []any{int64(12), 12, int32(12), float64(12), []byte("12"), "12", "12.00"} {
		n, ok := Int64(v)
		assert.True(t, ok, "%T", v)
		assert.Equal(t, int64(12), n)
	}
	_, ok := Int64(nil)
	assert.False(t, ok)

	f, ok := Float64([]byte("3.75"))
	require.True(t, ok)
	assert.Equal(t, 3.75, f)

	assert.Equal(t, []int64{1, 3}, Int64List([]any{float64(1), "x", int64(3)}))
	assert.Nil(t, Int64List("[1]"))
}

func TestAuditRecordRoundTrip(t *testing.T) {
	id, name := int64(4), "olga"
	rec := AuditRecord{ActorID: &id, ActorName: &name, Title: AuditTitle(AuditAdded, "orders", false), Kind: AuditAdded, SourceTable: "orders", RawDetails: `{"a":1}`}
	row := rec.ToRecord()
	assert.NotContains(t, row, ColCreatedAt)

	// после декодера raw_details приходит разобранным
	row["id"] = int64(1)
	row[ColRawDetails] = map[string]any{"a": float64(1)}
	row[ColCreatedAt] = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	back := AuditRecordFromRow(row)
	assert.Equal(t, int64(1), back.ID)
	assert.Equal(t, `{"a":1}`, back.RawDetails)
	assert.Equal(t, `New "orders" added`, back.Title)
	require.NotNil(t, back.ActorID)
	assert.Equal(t, id, *back.ActorID)

	anon := AuditRecordFromRow(Record{ColTitle: "t", ColActorID: nil})
	assert.Nil(t, anon.ActorID)
	assert.Nil(t, anon.ActorName)
}

func TestErrorTaxonomy(t *testing.T) {
	err := fmt.Errorf("update: %w", &StorageError{Op: "update", Table: "orders", Err: errors.New("conn reset")})
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrInvalidArgument)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "orders", se.Table)

	assert.ErrorIs(t, InvalidArgument("empty %s", "filter"), ErrInvalidArgument)
	assert.ErrorIs(t, Unauthorized("nope"), ErrUnauthorized)
}
