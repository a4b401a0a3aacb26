package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/sushihentaime/blogauth/internal/common"
	"github.com/sushihentaime/blogauth/internal/storage"
)

var ErrNotOwner = errors.New("blog belongs to another user")

// NewBlogService returns a service backed by db. images may be nil, in which
// case banner uploads are rejected. With ownerOnly set, only the author of a
// blog can update or delete it.
func NewBlogService(db *sql.DB, cache *common.Cache, images storage.ImageStore, ownerOnly bool, logger *slog.Logger) *BlogService {
	return &BlogService{
		m:         newBlogModel(db),
		c:         cache,
		images:    images,
		logger:    logger,
		ownerOnly: ownerOnly,
	}
}

// CreateBlog stores a blog owned by userID. The banner image, when present, is
// saved first and only its path is recorded on the row.
func (s *BlogService) CreateBlog(ctx context.Context, userID int, req CreateBlogRequest) (*Blog, error) {
	content := sanitizeMarkdown(req.Content)

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, content)
	validateInt(v, userID, "user_id")
	if req.BannerImage != nil {
		switch {
		case s.images == nil:
			v.AddError("banner_image", "uploads are not enabled")
		default:
			if err := req.BannerImage.Validate(); err != nil {
				v.AddError("banner_image", err.Error())
			}
		}
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog := Blog{
		Title:   req.Title,
		Content: content,
		UserID:  userID,
	}

	if req.BannerImage != nil {
		path, err := s.images.Save(ctx, *req.BannerImage)
		if err != nil {
			return nil, err
		}
		blog.BannerImage = &path
	}

	err := s.m.insert(ctx, &blog)
	if err != nil {
		s.removeImage(ctx, blog.BannerImage)
		return nil, err
	}

	return &blog, nil
}

// ListBlogs returns every blog, newest first.
func (s *BlogService) ListBlogs(ctx context.Context) ([]Blog, error) {
	return s.m.getBlogs(ctx, nil)
}

// MyBlogs returns exactly the blogs owned by userID.
func (s *BlogService) MyBlogs(ctx context.Context, userID int) ([]Blog, error) {
	v := common.NewValidator()
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getBlogs(ctx, &userID)
}

// GetBlogByID returns a blog post by its ID.
func (s *BlogService) GetBlogByID(ctx context.Context, id int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, found := s.c.Get(common.CacheKeyBlog(id)); found {
		blog := cached.(Blog)
		return &blog, nil
	}

	gen := s.cacheGen()

	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheBlog(gen, blog)

	return blog, nil
}

func (s *BlogService) cacheGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// cacheBlog stores a copy of blog unless an update or delete evicted blogs
// after gen was taken, in which case blog may already be stale.
func (s *BlogService) cacheBlog(gen uint64, blog *Blog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return
	}
	s.c.Set(common.CacheKeyBlog(blog.ID), *blog)
}

func (s *BlogService) evictBlog(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.c.Delete(common.CacheKeyBlog(id))
}

// UpdateBlog changes title and content. The owner and banner image never change.
func (s *BlogService) UpdateBlog(ctx context.Context, userID int, req UpdateBlogRequest) (*Blog, error) {
	content := sanitizeMarkdown(req.Content)

	v := common.NewValidator()
	validateInt(v, req.ID, "id")
	validateTitle(v, req.Title)
	validateContent(v, content)
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if s.ownerOnly && blog.UserID != userID {
		return nil, ErrNotOwner
	}

	blog.Title = req.Title
	blog.Content = content

	err = s.m.updateBlog(ctx, blog)
	if err != nil {
		return nil, err
	}

	s.evictBlog(blog.ID)

	return blog, nil
}

// DeleteBlog removes the blog and its banner image.
func (s *BlogService) DeleteBlog(ctx context.Context, userID, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	validateInt(v, userID, "user_id")
	if !v.Valid() {
		return v.ValidationError()
	}

	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return err
	}

	if s.ownerOnly && blog.UserID != userID {
		return ErrNotOwner
	}

	err = s.m.deleteBlog(ctx, id)
	if err != nil {
		return err
	}

	s.evictBlog(id)
	s.removeImage(ctx, blog.BannerImage)

	return nil
}

// removeImage never fails the caller; an orphaned file is only logged.
func (s *BlogService) removeImage(ctx context.Context, path *string) {
	if path == nil || s.images == nil {
		return
	}

	err := s.images.Delete(ctx, *path)
	if err != nil {
		s.logger.Error("could not remove banner image", slog.String("path", *path), slog.String("error", err.Error()))
	}
}
