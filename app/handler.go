package main

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/sushihentaime/blogauth/internal/blogservice"
	"github.com/sushihentaime/blogauth/internal/common"
	"github.com/sushihentaime/blogauth/internal/userservice"
)

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.RegisterRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user, err := app.userService.Register(r.Context(), input)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.failedValidationErrorResponse(w, r, map[string]string{"email": "The email has already been taken."})
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, respond(http.StatusCreated, "User registered successfully", envelope{"data": user}), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input userservice.LoginRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	token, err := app.userService.Login(r.Context(), input)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, userservice.ErrUserNotFound):
			app.loginFailedResponse(w, r, "User not found")
		case errors.Is(err, userservice.ErrPasswordMismatch):
			app.loginFailedResponse(w, r, "Passwords did not match")
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, respond(http.StatusOK, "Logged in successfully", envelope{"token": token.Plain}), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) profileHandler(w http.ResponseWriter, r *http.Request) {
	principal := app.getUserContext(r)

	user, err := app.userService.Profile(r.Context(), principal.ID)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrUserNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, respond(http.StatusOK, "Profile fetched successfully", envelope{"data": user}), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	token, err := app.userService.RefreshToken(r.Context(), user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, respond(http.StatusCreated, "Token refreshed successfully", envelope{"token": token.Plain}), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	err := app.userService.Logout(r.Context(), user.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, respond(http.StatusOK, "User logged out", nil), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// blogErrorResponse maps blog service errors shared by several handlers.
func (app *application) blogErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError
	switch {
	case errors.Is(err, common.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, blogservice.ErrNotOwner):
		app.notOwnerResponse(w, r)
	case errors.Is(err, blogservice.ErrEditConflict):
		app.editConflictResponse(w, r)
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	input, err := app.parseBlogForm(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.CreateBlog(r.Context(), user.ID, input)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusCreated, respond(http.StatusCreated, "Blog created successfully", envelope{"data": blog}), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	blogs, err := app.blogService.ListBlogs(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, respond(http.StatusOK, "Blogs data fetched successfully", envelope{"data": blogs}), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) myBlogsHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	blogs, err := app.blogService.MyBlogs(r.Context(), user.ID)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, respond(http.StatusOK, "Blogs data fetched successfully", envelope{"data": blogs}), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// showBlogHandler serves GET /blog/:id. httprouter cannot register /blog/me
// next to /blog/:id, so "me" is routed from here.
func (app *application) showBlogHandler(w http.ResponseWriter, r *http.Request) {
	if httprouter.ParamsFromContext(r.Context()).ByName("id") == "me" {
		app.requireAuthUser(app.myBlogsHandler)(w, r)
		return
	}

	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	blog, err := app.blogService.GetBlogByID(r.Context(), id)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, respond(http.StatusOK, "Blog data fetched successfully", envelope{"data": blog}), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	var input blogservice.UpdateBlogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.UpdateBlog(r.Context(), user.ID, input)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, respond(http.StatusOK, "Blog updated successfully", envelope{"data": blog}), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	id, err := app.readIDParam(r)
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.blogService.DeleteBlog(r.Context(), user.ID, id)
	if err != nil {
		app.blogErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, respond(http.StatusOK, "Blog deleted", nil), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
