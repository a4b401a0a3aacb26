package main

import (
	"log/slog"
	"net/http"
)

func (app *application) logError(r *http.Request, err error) {
	var (
		method  = r.Method
		url     = r.URL.RequestURI()
		message = err.Error()
	)

	app.logger.Error(message, slog.String("method", method), slog.String("url", url), slog.String("request_id", requestID(r)))
}

func (app *application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string, extra envelope, headers http.Header) {
	err := app.writeJSON(w, status, respond(status, message, extra), headers)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	message := "the server encountered a problem and could not process your request"
	app.errorResponse(w, r, http.StatusInternalServerError, message, nil, nil)
}

func (app *application) badRequestErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error(), nil, nil)
}

func (app *application) notFoundErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found", nil, nil)
}

func (app *application) methodNotAllowedErrorResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, "the method is not supported for this resource", nil, nil)
}

func (app *application) failedValidationErrorResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	app.errorResponse(w, r, http.StatusUnprocessableEntity, "The given data was invalid", envelope{"errors": errors}, nil)
}

func (app *application) invalidAuthenticationTokenResponse(w http.ResponseWriter, r *http.Request) {
	headers := http.Header{"WWW-Authenticate": []string{"Bearer"}}
	app.errorResponse(w, r, http.StatusUnauthorized, "invalid or missing authentication token", nil, headers)
}

func (app *application) notOwnerResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusForbidden, "you do not have permission to modify this blog", nil, nil)
}

func (app *application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusConflict, "unable to update the record due to an edit conflict, please try again", nil, nil)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, headers http.Header) {
	app.errorResponse(w, r, http.StatusTooManyRequests, "Too many requests. Try again later.", nil, headers)
}

// loginFailedResponse always reports 422 in the body. The HTTP status is 200
// unless strict statuses are configured, which is what existing clients expect.
func (app *application) loginFailedResponse(w http.ResponseWriter, r *http.Request, message string) {
	status := http.StatusOK
	if app.config.StrictHTTPStatus {
		status = http.StatusUnprocessableEntity
	}

	err := app.writeJSON(w, status, respond(http.StatusUnprocessableEntity, message, nil), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
