package product_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/georgemunganga/suby-backend/internal/modules/product"
	"github.com/georgemunganga/suby-backend/internal/modules/upload"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type response struct {
	Success        bool               `json:"success"`
	Message        string             `json:"message"`
	Product        *product.Product   `json:"product"`
	RestaurantName string             `json:"restaurantName"`
	Products       []*product.Product `json:"products"`
}

func newRouter(t *testing.T, e *env) (chi.Router, string) {
	t.Helper()
	dir := t.TempDir()
	uploads, err := upload.NewDiskStore(dir)
	require.NoError(t, err)

	h := product.NewHandler(e.products, uploads, 1<<20)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	h.RegisterPublicRoutes(r)
	return r, dir
}

func serve(r chi.Router, req *http.Request) (*httptest.ResponseRecorder, response) {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var resp response
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestProductHandlers(t *testing.T) {
	e := newEnv(t)
	router, dir := newRouter(t, e)
	firmPath := "/product/" + e.firm.ID.String()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("productName", "Dosa"))
	require.NoError(t, mw.WriteField("price", "4.50"))
	require.NoError(t, mw.WriteField("category", "veg"))
	require.NoError(t, mw.WriteField("bestSeller", "true"))
	part, err := mw.CreateFormFile("image", "dosa.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, firmPath, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, resp := serve(router, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Product added successfully", resp.Message)
	require.NotNil(t, resp.Product)
	assert.True(t, resp.Product.BestSeller)
	assert.True(t, strings.HasSuffix(resp.Product.Image, ".jpg"))
	_, err = os.Stat(dir + "/" + resp.Product.Image)
	assert.NoError(t, err)
	created := resp.Product.ID

	rec, resp = serve(router, httptest.NewRequest(http.MethodGet, firmPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Tasty Bites", resp.RestaurantName)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, created, resp.Products[0].ID)

	rec, resp = serve(router, httptest.NewRequest(http.MethodDelete, "/product/"+created.String(), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully", resp.Message)

	rec, resp = serve(router, httptest.NewRequest(http.MethodGet, firmPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, resp.Products)
	assert.Empty(t, resp.Products)

	rec, _ = serve(router, httptest.NewRequest(http.MethodDelete, "/product/"+created.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductHandlerErrors(t *testing.T) {
	e := newEnv(t)
	router, dir := newRouter(t, e)

	post := func(path, body string) (*httptest.ResponseRecorder, response) {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return serve(router, req)
	}

	rec, resp := post("/product/"+uuid.NewString(), `{"productName":"Dosa","price":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Firm not found", resp.Message)

	rec, _ = post("/product/"+e.firm.ID.String(), `{"productName":"Dosa","price":"two"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post("/product/"+e.firm.ID.String(), `{"productName":"Dosa","price":2,"category":["veg","vegan"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = post("/product/"+e.firm.ID.String(), `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = serve(router, httptest.NewRequest(http.MethodGet, "/product/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
