package converter

import (
	"time"
)

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID              string    `db:"id"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	ImageURL        string    `db:"image_url"`
	AffiliateLink   string    `db:"affiliate_link"`
	SEOTitle        string    `db:"seo_title"`
	MetaDescription string    `db:"meta_description"`
	SourceWebsite   string    `db:"source_website"`
	Category        *string   `db:"category"`
	SubCategory     string    `db:"sub_category"`
	Deals           bool      `db:"deals"`
	PriceMinor      *int64    `db:"price_minor"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	ProductID   string     `db:"product_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
