package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/storefront-console/internal/console/service"
	"github.com/xela07ax/storefront-console/internal/domain"
)

func TestContactThread(t *testing.T) {
	store, _ := newStore(t)
	svc := service.NewContactService(store)

	first, err := svc.Submit(ctx, buyer, domain.ContactInput{Name: "Anna", Email: "Anna@Example.com", Message: "Where is my order?"})
	require.NoError(t, err)
	require.NotNil(t, first.UserID)
	assert.Equal(t, buyer.ID, *first.UserID)

	_, err = svc.Submit(ctx, buyer, domain.ContactInput{Name: "Anna K", Email: "anna@example.com", Message: "Still waiting"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count(t, store, domain.TableContacts, nil))

	reply, err := svc.Reply(ctx, admin, domain.ReplyInput{MessageID: first.ID, Email: "anna@example.com", Reply: "Shipped today"})
	require.NoError(t, err)
	assert.NotEmpty(t, reply.ReplyID)

	threads, err := svc.ForActor(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	th := threads[0]
	assert.Equal(t, "Anna K", th.Name)
	require.Len(t, th.Messages, 2)
	assert.Equal(t, first.ID, th.Messages[0].ID)
	require.Len(t, th.Messages[0].Replies, 1)
	assert.Equal(t, "Shipped today", th.Messages[0].Replies[0].ReplyText)
	assert.Empty(t, th.Messages[1].Replies)

	page, err := svc.List(ctx, admin, service.PageQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalResults)
	assert.Len(t, page.Items[0].Messages, 2)
}

func TestContactAnonymousAndGuards(t *testing.T) {
	store, _ := newStore(t)
	svc := service.NewContactService(store)

	msg, err := svc.Submit(ctx, domain.Anonymous(), domain.ContactInput{Name: "Guest", Email: "guest@example.com", Message: "hi"})
	require.NoError(t, err)
	assert.Nil(t, msg.UserID)

	_, err = svc.Submit(ctx, domain.Anonymous(), domain.ContactInput{Name: "Guest", Email: "not-an-email", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.Reply(ctx, buyer, domain.ReplyInput{MessageID: msg.ID, Email: "guest@example.com", Reply: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Reply(ctx, admin, domain.ReplyInput{MessageID: "0b8c0d7e-4c9f-4a57-9a0e-3f6f5d8f1f11", Email: "guest@example.com", Reply: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ForActor(ctx, domain.Anonymous())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// анонимное обращение пишется в журнал без автора
	rows, err := store.Read(ctx, domain.TableNotifications, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0][domain.ColActorID])
}

func TestContactMessageWithInlineImage(t *testing.T) {
	store, _ := newStore(t)
	svc := service.NewContactService(store)
	body := "screenshot: data:image/png;base64,iVBORw0KGgo="

	_, err := svc.Submit(ctx, buyer, domain.ContactInput{Name: "Anna", Email: "anna@example.com", Message: body})
	require.NoError(t, err)
	// тред с картинкой в тексте продолжает читаться и дополняться
	_, err = svc.Submit(ctx, buyer, domain.ContactInput{Name: "Anna", Email: "anna@example.com", Message: "any news?"})
	require.NoError(t, err)

	threads, err := svc.ForActor(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.Len(t, threads[0].Messages, 2)
	assert.Equal(t, body, threads[0].Messages[0].Message)

	page, err := svc.List(ctx, admin, service.PageQuery{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Len(t, page.Items[0].Messages, 2)
}
