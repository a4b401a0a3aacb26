package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/sushihentaime/blogauth/internal/blogservice"
	"github.com/sushihentaime/blogauth/internal/storage"
)

type envelope map[string]any

func (e envelope) JSON() string {
	json, err := json.MarshalIndent(e, "", "\t")
	if err != nil {
		return ""
	}

	return string(json)
}

// respond builds the {status, message, ...} body every endpoint returns. The
// status in the body normally equals the HTTP status.
func respond(status int, message string, extra envelope) envelope {
	env := envelope{"status": status, "message": message}
	for k, v := range extra {
		env[k] = v
	}
	return env
}

func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	json, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(json)

	return nil
}

const maxJSONBytes = 1_048_576

func (app *application) parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("request body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("request body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("request body contains an invalid value for the %q field", unmarshalTypeError.Field)
			}
			return fmt.Errorf("request body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("request body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("request body contains unknown field %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("request body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = decoder.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("request body must only contain a single JSON value")
	}

	return nil
}

// multipart bodies carry the banner image plus the text fields
const maxMultipartBytes = storage.MaxImageSize + maxJSONBytes

// parseBlogForm reads a create request sent either as multipart/form-data
// (with an optional banner_image file) or as JSON.
func (app *application) parseBlogForm(w http.ResponseWriter, r *http.Request) (blogservice.CreateBlogRequest, error) {
	var req blogservice.CreateBlogRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var input struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			// accepted and ignored, the owner is always the requester
			UserID *int `json:"user_id"`
		}

		err := app.parseJSON(w, r, &input)
		req.Title = input.Title
		req.Content = input.Content
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBytes)

	err := r.ParseMultipartForm(maxMultipartBytes)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return req, fmt.Errorf("request body must not be larger than %d bytes", maxBytesError.Limit)
		}
		return req, errors.New("request body contains a malformed multipart form")
	}

	req.Title = r.FormValue("title")
	req.Content = r.FormValue("content")

	file, header, err := r.FormFile("banner_image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return req, nil
	case err != nil:
		return req, err
	}
	defer file.Close()

	// one byte over the limit is enough for the size check
	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		return req, err
	}

	req.BannerImage = &storage.Upload{Filename: header.Filename, Data: data}

	return req, nil
}

func (app *application) readIDParam(r *http.Request) (int, error) {
	params := httprouter.ParamsFromContext(r.Context())

	id, err := strconv.Atoi(params.ByName("id"))
	if err != nil || id < 1 {
		return 0, errors.New("invalid id parameter")
	}

	return id, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header has another shape.
func bearerToken(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
