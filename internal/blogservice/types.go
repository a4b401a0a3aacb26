package blogservice

import (
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/sushihentaime/blogauth/internal/common"
	"github.com/sushihentaime/blogauth/internal/storage"
)

type Blog struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	// Content is stored in Markdown format.
	Content     string    `json:"content"`
	UserID      int       `json:"user_id"`
	BannerImage *string   `json:"banner_image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

type CreateBlogRequest struct {
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	BannerImage *storage.Upload `json:"-"`
}

type UpdateBlogRequest struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m      *BlogModel
	c      *common.Cache
	images storage.ImageStore
	logger *slog.Logger
	// ownerOnly restricts update and delete to the blog's owner.
	ownerOnly bool

	// gen is bumped on every eviction. A read only fills the cache when no
	// eviction happened since it started loading.
	mu  sync.Mutex
	gen uint64
}
