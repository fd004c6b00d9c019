package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	service Service
	log     *slog.Logger
}

func NewHandler(service Service, log *slog.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/add_product", h.addProduct)
	r.Get("/product", h.listProducts)
	r.Get("/get_product/{id:[0-9]+}", h.getProduct)
	r.Put("/update_product/{id:[0-9]+}", h.updateProduct)
	r.Delete("/del_product/{id:[0-9]+}", h.deleteProduct)
	r.Get("/search_product", h.searchProducts)
	r.Get("/get_popularity", h.popularity)
	r.Get("/buy_product/{id:[0-9]+}", h.buyProduct)
}

type createdProduct struct {
	Name        string  `json:"Product Name"`
	Description string  `json:"Product Description"`
	Price       float64 `json:"Product price"`
	Category    string  `json:"Product category"`
}

type productDetail struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		message(w, http.StatusBadRequest, "bad Request")
		return
	}
	p, err := h.service.AddProduct(r.Context(), req)
	var missing *MissingFieldError
	switch {
	case errors.As(err, &missing):
		message(w, http.StatusBadRequest, missing.Error())
		return
	case errors.Is(err, ErrDuplicateName):
		message(w, http.StatusBadRequest, fmt.Sprintf("Product %s already exists", *req.Name))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{
		"message": "Product added successfully",
		"data": createdProduct{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Category:    p.Category,
		},
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.GetAllProducts(r.Context())
	switch {
	case errors.Is(err, ErrEmpty):
		message(w, http.StatusBadRequest, "No products in product table")
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message": "List of all products",
		"Data":    products,
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		message(w, http.StatusBadRequest, fmt.Sprintf("product with product id %s doesn't exists", chi.URLParam(r, "id")))
		return
	}
	p, err := h.service.GetProduct(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		message(w, http.StatusBadRequest, fmt.Sprintf("product with product id %d doesn't exists", id))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("product with product id %d exists", id),
		"Data":    productDetail{ID: p.ID, Name: p.Name, Description: p.Description, Price: p.Price},
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		message(w, http.StatusBadRequest, fmt.Sprintf("product with product id %s doesn't exists", chi.URLParam(r, "id")))
		return
	}
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		message(w, http.StatusBadRequest, "bad Request")
		return
	}
	_, err := h.service.UpdateProduct(r.Context(), id, req)
	switch {
	case errors.Is(err, ErrNotFound):
		message(w, http.StatusBadRequest, fmt.Sprintf("product with product id %d doesn't exists", id))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}
	message(w, http.StatusCreated, "Product updated successfully")
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		message(w, http.StatusBadRequest, fmt.Sprintf("No such product exist with id %s", chi.URLParam(r, "id")))
		return
	}
	p, err := h.service.DeleteProduct(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		message(w, http.StatusBadRequest, fmt.Sprintf("No such product exist with id %d", id))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message": "Product deleted successfully",
		"data":    p,
	})
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.service.SearchProducts(r.Context(), SearchFilter{
		Name:        q.Get("name"),
		Description: q.Get("description"),
		Category:    q.Get("category"),
	})
	switch {
	case errors.Is(err, ErrNotFound):
		message(w, http.StatusNotFound, "No Such product found")
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message": "Searched Product Match",
		"data":    products,
	})
}

func (h *Handler) popularity(w http.ResponseWriter, r *http.Request) {
	scores, err := h.service.PopularityScores(r.Context())
	switch {
	case errors.Is(err, ErrEmpty):
		message(w, http.StatusNotFound, "No Products Details Available")
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"message": "Product Popularity Scores in Descending Order",
		"data":    scores,
	})
}

func (h *Handler) buyProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		message(w, http.StatusNotFound, fmt.Sprintf("No such product with product id %s", chi.URLParam(r, "id")))
		return
	}
	_, err := h.service.BuyProduct(r.Context(), id)
	switch {
	case errors.Is(err, ErrNotFound):
		message(w, http.StatusNotFound, fmt.Sprintf("No such product with product id %d", id))
		return
	case errors.Is(err, ErrOutOfStock):
		message(w, http.StatusBadRequest, "0 product in inventory")
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}
	message(w, http.StatusCreated, fmt.Sprintf("Purchase of product with id %d is completed...", id))
}

// fail logs an unexpected error and answers with an opaque body carrying a
// reference that matches the log entry.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	ref := uuid.NewString()
	h.log.ErrorContext(r.Context(), "request failed",
		"error_id", ref, "method", r.Method, "path", r.URL.Path, "error", err)
	respond(w, http.StatusInternalServerError, map[string]string{
		"exception": "internal server error",
		"error_id":  ref,
	})
}

func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func message(w http.ResponseWriter, status int, msg string) {
	respond(w, status, map[string]string{"message": msg})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
