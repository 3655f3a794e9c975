package book

import (
	"errors"
	"net/http"
	"slices"

	"bookshelf/internal/httpx"

	"github.com/julienschmidt/httprouter"
)

const (
	createFailPrefix = "Gagal menambahkan buku. "
	updateFailPrefix = "Gagal memperbarui buku. "
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Routes mounts the book endpoints on router.
func (h *HTTPHandler) Routes(router *httprouter.Router) {
	router.HandlerFunc(http.MethodPost, "/books", h.Create)
	router.HandlerFunc(http.MethodGet, "/books", h.List)
	router.HandlerFunc(http.MethodGet, "/books/:bookId", h.Get)
	router.HandlerFunc(http.MethodPut, "/books/:bookId", h.Update)
	router.HandlerFunc(http.MethodDelete, "/books/:bookId", h.Delete)
}

func bookID(r *http.Request) string {
	return httprouter.ParamsFromContext(r.Context()).ByName("bookId")
}

// Create handles POST /books
// @Summary Add a book
// @Tags books
// @Accept json
// @Produce json
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 500 {object} httpx.Response
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var p Payload
	if !readPayload(w, r, &p) {
		return
	}

	id, err := h.service.Create(r.Context(), p)
	if err != nil {
		if ve, ok := IsValidation(err); ok {
			httpx.JSONFail(w, r, http.StatusBadRequest, createFailPrefix+validationMessage(ve))
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "Buku gagal ditambahkan")
		return
	}

	httpx.JSONSuccess(w, r, http.StatusCreated, "Buku berhasil ditambahkan", map[string]any{
		"bookId": id,
	})
}

// List handles GET /books
// @Summary List books
// @Tags books
// @Produce json
// @Param name query string false "Case-insensitive name fragment"
// @Param reading query string false "0 or 1"
// @Param finished query string false "0 or 1"
// @Success 200 {object} httpx.Response
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	f := Filter{
		Name:     query.Get("name"),
		Reading:  parseFlag(query.Get("reading")),
		Finished: parseFlag(query.Get("finished")),
	}

	books := slices.Collect(h.service.List(r.Context(), f))
	if books == nil {
		books = []Summary{}
	}

	httpx.JSONSuccess(w, r, http.StatusOK, "", map[string]any{
		"books": books,
	})
}

// Get handles GET /books/{bookId}
// @Summary Get book by id
// @Tags books
// @Produce json
// @Param bookId path string true "Book id"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /books/{bookId} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), bookID(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONFail(w, r, http.StatusNotFound, "Buku tidak ditemukan")
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.JSONSuccess(w, r, http.StatusOK, "", map[string]any{
		"book": b,
	})
}

// Update handles PUT /books/{bookId}
// @Summary Replace a book's fields
// @Tags books
// @Accept json
// @Produce json
// @Param bookId path string true "Book id"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /books/{bookId} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p Payload
	if !readPayload(w, r, &p) {
		return
	}

	err := h.service.Update(r.Context(), bookID(r), p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONFail(w, r, http.StatusNotFound, updateFailPrefix+"Id tidak ditemukan")
			return
		}
		if ve, ok := IsValidation(err); ok {
			httpx.JSONFail(w, r, http.StatusBadRequest, updateFailPrefix+validationMessage(ve))
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.JSONSuccess(w, r, http.StatusOK, "Buku berhasil diperbarui", nil)
}

// Delete handles DELETE /books/{bookId}
// @Summary Delete a book
// @Tags books
// @Produce json
// @Param bookId path string true "Book id"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /books/{bookId} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(r.Context(), bookID(r))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONFail(w, r, http.StatusNotFound, "Buku gagal dihapus. Id tidak ditemukan")
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.JSONSuccess(w, r, http.StatusOK, "Buku berhasil dihapus", nil)
}

// readPayload decodes the request body into p, answering 413 or 400 when it
// cannot.
func readPayload(w http.ResponseWriter, r *http.Request, p *Payload) bool {
	err := httpx.ReadJSON(r, p)
	switch {
	case err == nil:
		return true
	case errors.Is(err, httpx.ErrBodyTooLarge):
		httpx.BodyTooLarge(w, r)
	default:
		httpx.JSONFail(w, r, http.StatusBadRequest, "Invalid request payload JSON format")
	}
	return false
}

// parseFlag accepts only "0" and "1"; anything else means "no filter".
func parseFlag(v string) *bool {
	switch v {
	case "1":
		t := true
		return &t
	case "0":
		f := false
		return &f
	default:
		return nil
	}
}

func validationMessage(ve *ValidationError) string {
	switch ve.Rule {
	case RuleRequired:
		return "Mohon isi nama buku"
	case RuleExceedsTotal:
		return "readPage tidak boleh lebih besar dari pageCount"
	case RuleNegative:
		return ve.Field + " tidak boleh negatif"
	default:
		return ve.Field + " tidak valid"
	}
}
