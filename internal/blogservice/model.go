package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sushihentaime/blogauth/internal/common"
)

var (
	ErrUserForeignKey = errors.New("user_id does not exist")
	ErrEditConflict   = errors.New("unable to update the record due to an edit conflict, please try again")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

func (m *BlogModel) insert(ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blogs (title, content, user_id, banner_image)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at, version`

	err := m.db.QueryRowContext(ctx, query, blog.Title, blog.Content, blog.UserID, blog.BannerImage).Scan(&blog.ID, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case common.ForeignKeyViolation(err, "blogs_user_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) getBlogByID(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT id, title, content, user_id, banner_image, created_at, updated_at, version
		FROM blogs
		WHERE id = $1`

	var blog Blog
	err := m.db.QueryRowContext(ctx, query, id).Scan(&blog.ID, &blog.Title, &blog.Content, &blog.UserID, &blog.BannerImage, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

// updateBlog writes title and content only. The version check turns a
// concurrent modification into ErrEditConflict.
func (m *BlogModel) updateBlog(ctx context.Context, blog *Blog) error {
	query := `
		UPDATE blogs
		SET title = $1, content = $2, updated_at = now(), version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version, updated_at`

	err := m.db.QueryRowContext(ctx, query, blog.Title, blog.Content, blog.ID, blog.Version).Scan(&blog.Version, &blog.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) deleteBlog(ctx context.Context, id int) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return common.ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

// getBlogs returns every blog, newest first. An optional user id narrows the
// result to that owner.
func (m *BlogModel) getBlogs(ctx context.Context, userID *int) ([]Blog, error) {
	query := `
		SELECT id, title, content, user_id, banner_image, created_at, updated_at, version
		FROM blogs
		WHERE ($1::bigint IS NULL OR user_id = $1)
		ORDER BY created_at DESC, id DESC`

	rows, err := m.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		var blog Blog
		err := rows.Scan(&blog.ID, &blog.Title, &blog.Content, &blog.UserID, &blog.BannerImage, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}
