package handlers_integrated_test_suite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/rogerio-castellano/catalog-service/internal/catalog"
	"github.com/rogerio-castellano/catalog-service/internal/db"
	handler "github.com/rogerio-castellano/catalog-service/internal/http/handlers"
	"github.com/rogerio-castellano/catalog-service/internal/http/router"
	"github.com/rogerio-castellano/catalog-service/internal/redissvc"
	"github.com/rogerio-castellano/catalog-service/internal/repo"
	"github.com/rogerio-castellano/catalog-service/internal/storage"
)

var (
	database   *sql.DB
	imageStore *storage.LocalStore
	products   repo.ProductRepository
)

func setupTestRepos(dbURL, redisURL, uploadDir string) error {
	var err error
	database, err = db.Connect(db.Postgres, dbURL)
	if err != nil {
		return fmt.Errorf("could not connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx, database, db.Postgres); err != nil {
		return err
	}

	products = repo.NewSQLProductRepository(database, db.Postgres, 0)
	if redisURL != "" {
		rdb, err := redissvc.Connect(ctx, redisURL)
		if err != nil {
			return err
		}
		products = redissvc.NewCachedProductRepository(products, redissvc.NewRedisService(rdb, time.Minute), nil)
	}

	imageStore, err = storage.NewLocalStore(uploadDir, "/uploads")
	return err
}

func newRouter() http.Handler {
	svc := catalog.NewService(products, imageStore, nil)
	return router.NewRouter(handler.NewHandler(svc, database, nil, 0), router.Options{
		UploadDir:       imageStore.Dir(),
		UploadURLPrefix: imageStore.Prefix(),
	})
}

// clearAllProducts goes through the repository so a configured cache is
// invalidated as well.
func clearAllProducts() {
	ctx := context.Background()
	all, _ := products.GetAll(ctx)
	for _, p := range all {
		_ = products.Delete(ctx, p.ID)
	}
}

func floatPtr(v float64) *float64 { return &v }

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

func listProducts(r http.Handler) []handler.ProductResponse {
	w := doRequest(r, http.MethodGet, "/products", nil, "")
	var resp []handler.ProductResponse
	_ = json.NewDecoder(w.Body).Decode(&resp)
	return resp
}
