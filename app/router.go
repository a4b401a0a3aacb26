package main

import (
	"net/http"
	"os"

	"github.com/julienschmidt/httprouter"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/healthcheck", app.healthCheckHandler)

	// the limiter runs before the token is looked at
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return app.authLimit(app.authenticate(h))
	}
	public := func(h http.HandlerFunc) http.HandlerFunc {
		return app.apiLimit(app.authenticate(h))
	}
	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return app.apiLimit(app.authenticate(app.requireAuthUser(h)))
	}

	// user service
	router.HandlerFunc(http.MethodPost, "/user/register", auth(app.registerUserHandler))
	router.HandlerFunc(http.MethodPost, "/user/login", auth(app.loginUserHandler))
	router.HandlerFunc(http.MethodGet, "/user/me", protected(app.profileHandler))
	router.HandlerFunc(http.MethodGet, "/user/refresh-token", protected(app.refreshTokenHandler))
	router.HandlerFunc(http.MethodGet, "/user/logout", protected(app.logoutUserHandler))

	// blog service, GET /blog/me is dispatched by showBlogHandler
	router.HandlerFunc(http.MethodPost, "/blog", protected(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/blog", public(app.listBlogsHandler))
	router.HandlerFunc(http.MethodPut, "/blog", protected(app.updateBlogHandler))
	router.HandlerFunc(http.MethodGet, "/blog/:id", public(app.showBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/blog/:id", protected(app.deleteBlogHandler))

	if app.imagesDir != "" {
		router.ServeFiles("/images/*filepath", fileOnlyFS{http.Dir(app.imagesDir)})
	}

	var handler http.Handler = app.enableCORS(router)
	if app.config.OTELEndpoint != "" {
		handler = otelhttp.NewHandler(handler, "http.server")
	}

	return app.recoverPanic(app.logRequest(handler))
}

// fileOnlyFS serves files but never directory listings.
type fileOnlyFS struct {
	fs http.FileSystem
}

func (f fileOnlyFS) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if stat.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}

	return file, nil
}
