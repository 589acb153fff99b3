package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Статусы модерации услуги.
const (
	GigStatusPending  = "pending"
	GigStatusApproved = "approved"
	GigStatusRejected = "rejected"
)

// ValidGigStatuses список валидных статусов услуг.
var ValidGigStatuses = map[string]struct{}{
	GigStatusPending:  {},
	GigStatusApproved: {},
	GigStatusRejected: {},
}

// Gig описывает опубликованную услугу продавца.
type Gig struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	SellerID      uuid.UUID      `db:"seller_id" json:"seller_id"`
	Title         string         `db:"title" json:"title"`
	Description   string         `db:"description" json:"description"`
	Category      string         `db:"category" json:"category"`
	Price         float64        `db:"price" json:"price"`
	Image         *string        `db:"image" json:"image,omitempty"`
	DeliveryDays  int            `db:"delivery_days" json:"delivery_days"`
	Features      pq.StringArray `db:"features" json:"features"`
	Status        string         `db:"status" json:"status"`
	IsFeatured    bool           `db:"is_featured" json:"is_featured"`
	AverageRating float64        `db:"average_rating" json:"average_rating"`
	ReviewCount   int            `db:"review_count" json:"review_count"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// Category описывает рубрику каталога.
type Category struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Review — отзыв покупателя об услуге после завершения заказа.
type Review struct {
	ID        uuid.UUID `db:"id" json:"id"`
	GigID     uuid.UUID `db:"gig_id" json:"gig_id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	BuyerID   uuid.UUID `db:"buyer_id" json:"buyer_id"`
	Star      int       `db:"star" json:"star"`
	Comment   string    `db:"comment" json:"comment"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Favorite — отметка «избранное» пользователя на услуге.
type Favorite struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	GigID     uuid.UUID `db:"gig_id" json:"gig_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
