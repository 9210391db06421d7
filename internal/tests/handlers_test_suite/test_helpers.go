package handlers_test_suite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/rogerio-castellano/catalog-service/internal/catalog"
	handler "github.com/rogerio-castellano/catalog-service/internal/http/handlers"
	"github.com/rogerio-castellano/catalog-service/internal/http/router"
	"github.com/rogerio-castellano/catalog-service/internal/repo"
	"github.com/rogerio-castellano/catalog-service/internal/storage"
)

var (
	productRepo *repo.InMemoryProductRepository
	imageStore  *storage.LocalStore
)

func setupTestRepos(uploadDir string) {
	productRepo = repo.NewInMemoryProductRepository()

	var err error
	imageStore, err = storage.NewLocalStore(uploadDir, "/uploads")
	if err != nil {
		panic(fmt.Sprintf("error creating upload dir: %v", err))
	}
}

func newHandler(maxUploadBytes int64) *handler.Handler {
	svc := catalog.NewService(productRepo, imageStore, nil)
	return handler.NewHandler(svc, nil, nil, maxUploadBytes)
}

func newRouter() http.Handler {
	return router.NewRouter(newHandler(0), router.Options{
		UploadDir:       imageStore.Dir(),
		UploadURLPrefix: imageStore.Prefix(),
	})
}

func clearAllProducts() {
	productRepo.Clear()
}

func clearAllUploads() {
	entries, _ := os.ReadDir(imageStore.Dir())
	for _, e := range entries {
		_ = os.RemoveAll(filepath.Join(imageStore.Dir(), e.Name()))
	}
}

func uploadedFiles() []string {
	entries, _ := os.ReadDir(imageStore.Dir())
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func mugRequest() handler.ProductRequest {
	return handler.ProductRequest{
		Name:     "Mug",
		Brand:    "Acme",
		Category: "Kitchen",
		Price:    floatPtr(9.99),
		ImageURL: "http://x/img.png",
	}
}

func doRequest(r http.Handler, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	body, _ := json.Marshal(p)
	return doRequest(r, http.MethodPost, "/products", body, "application/json")
}

func updateProduct(r http.Handler, id int, p handler.ProductRequest) *httptest.ResponseRecorder {
	body, _ := json.Marshal(p)
	return doRequest(r, http.MethodPut, fmt.Sprintf("/products/%d", id), body, "application/json")
}

func getProduct(r http.Handler, id int) (handler.ProductResponse, int) {
	w := doRequest(r, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, "")
	var resp handler.ProductResponse
	_ = json.NewDecoder(w.Body).Decode(&resp)
	return resp, w.Code
}

func listProducts(r http.Handler) []handler.ProductResponse {
	w := doRequest(r, http.MethodGet, "/products", nil, "")
	var resp []handler.ProductResponse
	_ = json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

// multipartProduct builds a form with the given text fields and, when
// filename is set, an image file part.
func multipartProduct(fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	if filename != "" {
		part, _ := writer.CreateFormFile("image", filename)
		_, _ = part.Write(content)
	}

	_ = writer.Close()
	return &buf, writer.FormDataContentType()
}

func decodeValidationErrors(w *httptest.ResponseRecorder) ([]handler.ProductValidationError, error) {
	var resp []handler.ProductValidationError
	err := json.NewDecoder(w.Body).Decode(&resp)
	return resp, err
}

func hasField(errs []handler.ProductValidationError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
