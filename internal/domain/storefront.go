package domain

import "time"

// Входные данные витрины. Теги validate проверяет сервисный слой (go-playground/validator).

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Slug        string `json:"slug" validate:"required,max=50"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func (c CategoryInput) ToRecord() Record {
	return Record{"name": c.Name, "slug": c.Slug, "description": c.Description, "image_url": c.ImageURL}
}

type ProductInput struct {
	Name           string   `json:"name" validate:"required,max=255"`
	Slug           string   `json:"slug" validate:"required,max=100"`
	Description    string   `json:"description"`
	Price          float64  `json:"price" validate:"gte=0"`
	ImageURL       string   `json:"image_url"`
	Stock          int      `json:"stock" validate:"gte=0"`
	Category       string   `json:"category" validate:"max=100"`
	DetailedImages []string `json:"detailed_images"`
}

func (p ProductInput) ToRecord() Record {
	rec := Record{
		"name":        p.Name,
		"slug":        p.Slug,
		"description": p.Description,
		"price":       p.Price,
		"image_url":   p.ImageURL,
		"stock":       p.Stock,
		"category":    p.Category,
	}
	if p.DetailedImages != nil {
		rec["detailed_images"] = p.DetailedImages
	}
	return rec
}

// RatingResult: состояние рейтинга после голоса.
type RatingResult struct {
	RatingCount  int64   `json:"rating_count"`
	RatingNumber float64 `json:"rating_number"`
	IsRated      bool    `json:"isRated"`
}

type LikeResult struct {
	Liked       bool  `json:"liked"`
	LikesNumber int64 `json:"likes_number"`
}

// Статусы заказа.
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

type OrderItem struct {
	ProductID int64   `json:"productId" validate:"required"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity" validate:"gte=1"`
	Price     float64 `json:"price" validate:"gte=0"`
}

type OrderInput struct {
	CustomerName string      `json:"customerName" validate:"required,max=100"`
	Email        string      `json:"email" validate:"required,email"`
	Items        []OrderItem `json:"orderItems" validate:"required,min=1,dive"`
}

type OrderStatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// Сообщения обратной связи хранятся JSON-массивом в contacts.messages.

type ContactInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

type ReplyInput struct {
	MessageID string `json:"messageId" validate:"required,uuid"`
	Email     string `json:"email" validate:"required,email"`
	Reply     string `json:"reply" validate:"required"`
}

type ContactReply struct {
	ReplyID   string    `json:"replyId"`
	ReplyText string    `json:"replyText"`
	ReplyDate time.Time `json:"replyDate"`
}

type ContactMessage struct {
	ID        string         `json:"id"`
	UserID    *int64         `json:"userId"`
	Name      string         `json:"name"`
	Message   string         `json:"message"`
	CreatedAt time.Time      `json:"created_at"`
	Replies   []ContactReply `json:"replies"`
}
