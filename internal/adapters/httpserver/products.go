package httpserver

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danghuy/secondcell/internal/domain"
	"github.com/danghuy/secondcell/internal/usecase"
)

const maxUploadBytes = 25 << 20

// apiUpload accepts multipart image fields and returns the public URLs.
// No valid files attached is not an error, just an empty list.
func (s *Server) apiUpload(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad multipart form"})
		return
	}

	urls := []string{}
	for _, f := range formFiles(r) {
		u, err := s.inventory.Storage.Upload(r.Context(), f.Name, f.ContentType, f.Data)
		if err != nil {
			log.Error().Err(err).Str("file", f.Name).Msg("upload failed")
			writeErr(w, err)
			return
		}
		urls = append(urls, u)
	}
	writeJSON(w, 200, map[string]any{"imageUrls": urls})
}

// apiDeleteImages derives object keys from the given URLs and deletes
// the blobs. Invalid URLs are skipped with a warning, not fatal.
func (s *Server) apiDeleteImages(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var req struct {
		ImageURLs []string `json:"imageUrls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json"})
		return
	}

	keys := usecase.StorageKeys(req.ImageURLs)
	if len(keys) > 0 {
		if err := s.inventory.Storage.Delete(r.Context(), keys); err != nil {
			writeErr(w, err)
			return
		}
	}
	writeJSON(w, 200, map[string]any{"message": "deleted"})
}

func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listProducts(w, r)
	case http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		s.submitProduct(w, r, "")
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) apiProductByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/sold"); ok {
		if !s.requireAdmin(w, r) {
			return
		}
		s.markSold(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := s.catalog.Products.Get(r.Context(), rest)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"product": p, "displayImage": p.DisplayImage()})
	case http.MethodPut:
		if !s.requireAdmin(w, r) {
			return
		}
		s.submitProduct(w, r, rest)
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		if err := s.inventory.Delete(r.Context(), rest); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"message": "deleted"})
	default:
		http.Error(w, "method", 405)
	}
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	min, err := domain.ParseAmount("min", q.Get("min"))
	if err != nil {
		writeErr(w, err)
		return
	}
	max, err := domain.ParseAmount("max", q.Get("max"))
	if err != nil {
		writeErr(w, err)
		return
	}

	list, err := s.catalog.List(r.Context(), usecase.CatalogFilter{
		Search:   q.Get("q"),
		Type:     domain.ProductType(q.Get("type")),
		Brand:    q.Get("brand"),
		PriceMin: min,
		PriceMax: max,
		Sort:     q.Get("sort"),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"products": list})
}

func (s *Server) submitProduct(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad multipart form"})
		return
	}
	in, err := listingFromForm(r)
	if err != nil {
		writeErr(w, err)
		return
	}

	var p *domain.Product
	if id == "" {
		p, err = s.inventory.Submit(r.Context(), in, formFiles(r))
	} else {
		p, err = s.inventory.Update(r.Context(), id, in, formFiles(r))
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 201, map[string]any{"product": p})
}

func (s *Server) markSold(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method", 405)
		return
	}
	var in domain.SaleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, 400, map[string]any{"error": "bad json"})
		return
	}
	sale, err := s.inventory.MarkSold(r.Context(), id, in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"sale": sale})
}

// listingFromForm coerces the multipart fields into a typed input.
// Non-numeric price/battery input is a validation error here, before
// anything touches the network.
func listingFromForm(r *http.Request) (domain.ListingInput, error) {
	var in domain.ListingInput

	price, err := domain.ParseAmount("price", r.FormValue("price"))
	if err != nil {
		return in, err
	}
	battery, err := domain.ParseAmount("battery", r.FormValue("battery"))
	if err != nil {
		return in, err
	}

	var newPrice *int
	if raw := strings.TrimSpace(r.FormValue("new_price")); raw != "" {
		np, err := domain.ParseAmount("new_price", raw)
		if err != nil {
			return in, err
		}
		newPrice = &np
	}

	in = domain.ListingInput{
		IMEI:        r.FormValue("imei"),
		Type:        domain.ProductType(r.FormValue("type")),
		Name:        r.FormValue("name"),
		Price:       price,
		NewPrice:    newPrice,
		Tag:         domain.Tag(r.FormValue("tag")),
		Description: r.FormValue("description"),
		Brand:       r.FormValue("brand"),
		Condition:   domain.Condition(r.FormValue("condition")),
		Storage:     r.FormValue("storage"),
		Colour:      r.FormValue("colour"),
		Camera:      r.FormValue("camera"),
		Battery:     battery,
		Processor:   r.FormValue("processor"),
	}
	if r.MultipartForm != nil {
		in.Images = append(in.Images, r.MultipartForm.Value["image_urls"]...)
	}
	return in, nil
}

func formFiles(r *http.Request) []usecase.UploadFile {
	if r.MultipartForm == nil {
		return nil
	}
	headers := []*multipart.FileHeader{}
	headers = append(headers, r.MultipartForm.File["image"]...)
	headers = append(headers, r.MultipartForm.File["images"]...)

	files := make([]usecase.UploadFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size == 0 {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil || len(data) == 0 {
			continue
		}
		files = append(files, usecase.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files
}
