package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xela07ax/storefront-console/internal/actor"
	"github.com/xela07ax/storefront-console/internal/domain"
	"github.com/xela07ax/storefront-console/internal/query"
)

// ContactThread: обращения одного email вместе с ответами.
type ContactThread struct {
	ID       int64                   `json:"id"`
	Email    string                  `json:"email"`
	Name     string                  `json:"name"`
	Messages []domain.ContactMessage `json:"messages"`
}

type ContactService struct {
	store RecordStore
	now   func() time.Time
}

func NewContactService(store RecordStore) *ContactService {
	return &ContactService{store: store, now: time.Now}
}

// Submit дописывает сообщение в ветку email или создает ее. Аноним допускается.
func (s *ContactService) Submit(ctx context.Context, a domain.ActorContext, in domain.ContactInput) (domain.ContactMessage, error) {
	if err := validateInput(in); err != nil {
		return domain.ContactMessage{}, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	msg := domain.ContactMessage{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Message:   in.Message,
		CreatedAt: s.now().UTC(),
		Replies:   []domain.ContactReply{},
	}
	var userID any
	if !a.IsAnonymous() {
		id := a.ID
		msg.UserID = &id
		userID = id
	}

	thread, err := s.thread(ctx, email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_, err = s.store.Create(ctx, a, domain.TableContacts, domain.Record{
			"userId":   userID,
			"email":    email,
			"name":     in.Name,
			"messages": []domain.ContactMessage{msg},
		})
	case err == nil:
		_, err = s.store.Update(ctx, a, domain.TableContacts, domain.Record{
			"name":     in.Name,
			"messages": append(thread.Messages, msg),
		}, query.Where(query.Eq("id", thread.ID)))
	}
	if err != nil {
		return domain.ContactMessage{}, fmt.Errorf("submit contact: %w", err)
	}
	return msg, nil
}

// Reply добавляет ответ администратора к сообщению ветки.
func (s *ContactService) Reply(ctx context.Context, a domain.ActorContext, in domain.ReplyInput) (domain.ContactReply, error) {
	if err := requireSection(a, actor.SectionContacts); err != nil {
		return domain.ContactReply{}, err
	}
	if err := validateInput(in); err != nil {
		return domain.ContactReply{}, err
	}

	thread, err := s.thread(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return domain.ContactReply{}, err
	}

	reply := domain.ContactReply{ReplyID: uuid.NewString(), ReplyText: in.Reply, ReplyDate: s.now().UTC()}
	found := false
	for i := range thread.Messages {
		if thread.Messages[i].ID == in.MessageID {
			thread.Messages[i].Replies = append(thread.Messages[i].Replies, reply)
			found = true
			break
		}
	}
	if !found {
		return domain.ContactReply{}, fmt.Errorf("message %s: %w", in.MessageID, domain.ErrNotFound)
	}

	_, err = s.store.Update(ctx, a, domain.TableContacts, domain.Record{"messages": thread.Messages},
		query.Where(query.Eq("id", thread.ID)))
	if err != nil {
		return domain.ContactReply{}, fmt.Errorf("reply contact: %w", err)
	}
	return reply, nil
}

// ForActor: ветки, отправленные из-под текущей сессии.
func (s *ContactService) ForActor(ctx context.Context, a domain.ActorContext) ([]ContactThread, error) {
	if err := requireUser(a); err != nil {
		return nil, err
	}
	rows, err := s.store.Read(ctx, domain.TableContacts, query.Where(query.Eq("userId", a.ID)))
	if err != nil {
		return nil, err
	}
	out := make([]ContactThread, 0, len(rows))
	for _, row := range rows {
		t, err := threadFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *ContactService) List(ctx context.Context, a domain.ActorContext, pq PageQuery) (PageResult[ContactThread], error) {
	if err := requireSection(a, actor.SectionContacts); err != nil {
		return PageResult[ContactThread]{}, err
	}
	page, err := listPage(ctx, s.store, domain.TableContacts, nil, pq, "id", query.Desc)
	if err != nil {
		return PageResult[ContactThread]{}, err
	}
	var convErr error
	out := mapPage(page, func(r domain.Record) ContactThread {
		t, err := threadFromRow(r)
		if err != nil && convErr == nil {
			convErr = err
		}
		return t
	})
	return out, convErr
}

func (s *ContactService) Delete(ctx context.Context, a domain.ActorContext, id int64) (domain.Result, error) {
	if err := requireSection(a, actor.SectionContacts); err != nil {
		return domain.Result{}, err
	}
	res, err := s.store.Delete(ctx, a, domain.TableContacts, query.Where(query.Eq("id", id)))
	if err != nil {
		return res, err
	}
	return res, notFoundIfNone(res, fmt.Sprintf("contact %d", id))
}

func (s *ContactService) thread(ctx context.Context, email string) (ContactThread, error) {
	row, err := readOne(ctx, s.store, domain.TableContacts, query.Where(query.Eq("email", email)))
	if err != nil {
		return ContactThread{}, err
	}
	return threadFromRow(row)
}

// messages после декодера, []any из map; приводим к типам через JSON.
func threadFromRow(row domain.Record) (ContactThread, error) {
	t := ContactThread{Email: domain.String(row["email"]), Name: domain.String(row["name"])}
	t.ID, _ = domain.Int64(row["id"])

	raw := row["messages"]
	if raw == nil {
		return t, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return t, fmt.Errorf("contact %d messages: %w", t.ID, err)
	}
	if err := json.Unmarshal(data, &t.Messages); err != nil {
		return t, fmt.Errorf("contact %d messages: %w", t.ID, err)
	}
	return t, nil
}
