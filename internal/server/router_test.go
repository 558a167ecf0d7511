package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/georgemunganga/suby-backend/internal/modules/auth"
	"github.com/georgemunganga/suby-backend/internal/modules/firm"
	"github.com/georgemunganga/suby-backend/internal/modules/product"
	"github.com/georgemunganga/suby-backend/internal/modules/upload"
	"github.com/georgemunganga/suby-backend/internal/modules/vendor"
	"github.com/georgemunganga/suby-backend/internal/server"
	"github.com/georgemunganga/suby-backend/internal/testutil/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type client struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newClient(t *testing.T, requireAuth bool) *client {
	t.Helper()
	store := memstore.New()
	uploads, err := upload.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	authSvc := auth.NewService(store, "secret", time.Hour)
	router := server.NewRouter(zap.NewNop(), server.Handlers{
		Vendor:  vendor.NewHandler(vendor.NewService(store)),
		Auth:    auth.NewHandler(authSvc),
		Firm:    firm.NewHandler(firm.NewService(store, store, store, store), uploads, 1<<20),
		Product: product.NewHandler(product.NewService(store, store, store), uploads, 1<<20),
		Uploads: uploads,
	}, server.Options{CORSOrigins: []string{"*"}, RequireAuth: requireAuth})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &client{t: t, server: srv}
}

func (c *client) do(method, path, contentType string, body io.Reader) (int, map[string]interface{}) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.server.URL+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (c *client) json(method, path string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	if body == nil {
		return c.do(method, path, "", nil)
	}
	raw, err := json.Marshal(body)
	require.NoError(c.t, err)
	return c.do(method, path, "application/json", bytes.NewReader(raw))
}

func TestMarketplaceScenario(t *testing.T) {
	c := newClient(t, false)

	status, body := c.json(http.MethodPost, "/vendor/register", map[string]string{
		"username": "asha", "email": "asha@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status, body)
	vendorID := body["vendor"].(map[string]interface{})["id"].(string)

	// Firm with an image sent as multipart.
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	mw.WriteField("firmName", "Tasty Bites")
	mw.WriteField("area", "MG Road")
	mw.WriteField("category", "veg")
	part, _ := mw.CreateFormFile("image", "logo.png")
	part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	mw.Close()

	status, body = c.do(http.MethodPost, "/firm/"+vendorID, mw.FormDataContentType(), buf)
	require.Equal(t, http.StatusCreated, status, body)
	firmID := body["firmId"].(string)
	image := body["firm"].(map[string]interface{})["image"].(string)
	assert.Equal(t, "Tasty Bites", body["vendorFirmName"])

	resp, err := http.Get(c.server.URL + "/uploads/" + image)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status, body = c.json(http.MethodGet, "/vendor/single-vendor/"+vendorID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, firmID, body["vendorFirmId"])

	status, body = c.json(http.MethodPost, "/firm/"+vendorID, map[string]string{"firmName": "Second", "area": "X"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Vendor can have only one firm", body["message"])

	var productIDs []string
	for _, name := range []string{"Dosa", "Idli"} {
		status, body = c.json(http.MethodPost, "/product/"+firmID, map[string]interface{}{
			"productName": name, "price": 3.25, "category": []string{"veg"},
		})
		require.Equal(t, http.StatusCreated, status, body)
		productIDs = append(productIDs, body["product"].(map[string]interface{})["id"].(string))
	}

	status, body = c.json(http.MethodGet, "/product/"+firmID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Tasty Bites", body["restaurantName"])
	assert.Len(t, body["products"], 2)

	status, _ = c.json(http.MethodDelete, "/product/"+productIDs[0], nil)
	assert.Equal(t, http.StatusOK, status)
	status, body = c.json(http.MethodGet, "/product/"+firmID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["products"], 1)

	status, body = c.json(http.MethodDelete, "/firm/"+firmID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Firm deleted successfully", body["message"])

	status, body = c.json(http.MethodGet, "/vendor/single-vendor/"+vendorID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["vendorFirmId"])

	status, _ = c.json(http.MethodGet, "/product/"+firmID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = c.json(http.MethodGet, "/vendor/all-vendors", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["vendors"], 1)
}

func TestRequireAuth(t *testing.T) {
	c := newClient(t, true)

	status, body := c.json(http.MethodPost, "/vendor/register", map[string]string{
		"username": "asha", "email": "asha@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, status)
	vendorID := body["vendor"].(map[string]interface{})["id"].(string)

	status, body = c.json(http.MethodPost, "/firm/"+vendorID, map[string]string{"firmName": "Tasty Bites", "area": "MG Road"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token is required", body["message"])

	status, body = c.json(http.MethodPost, "/vendor/login", map[string]string{"email": "asha@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, status)
	c.token = body["token"].(string)

	status, body = c.json(http.MethodPost, "/firm/"+vendorID, map[string]string{"firmName": "Tasty Bites", "area": "MG Road"})
	require.Equal(t, http.StatusCreated, status, body)

	c.token = ""
	status, _ = c.json(http.MethodGet, "/product/"+body["firmId"].(string), nil)
	assert.Equal(t, http.StatusOK, status, "listing stays public")
}

func TestRequireAuthOwnership(t *testing.T) {
	c := newClient(t, true)

	login := func(username, email string) (string, string) {
		status, body := c.json(http.MethodPost, "/vendor/register", map[string]string{
			"username": username, "email": email, "password": "secret1",
		})
		require.Equal(t, http.StatusCreated, status, body)
		status, body = c.json(http.MethodPost, "/vendor/login", map[string]string{"email": email, "password": "secret1"})
		require.Equal(t, http.StatusOK, status, body)
		return body["vendorId"].(string), body["token"].(string)
	}
	ownerID, ownerToken := login("asha", "asha@example.com")
	_, otherToken := login("ravi", "ravi@example.com")

	c.token = ownerToken
	status, body := c.json(http.MethodPost, "/firm/"+ownerID, map[string]string{"firmName": "Tasty Bites", "area": "MG Road"})
	require.Equal(t, http.StatusCreated, status, body)
	firmID := body["firmId"].(string)
	status, body = c.json(http.MethodPost, "/product/"+firmID, map[string]interface{}{"productName": "Dosa", "price": "4.50"})
	require.Equal(t, http.StatusCreated, status, body)
	productID := body["product"].(map[string]interface{})["id"].(string)

	c.token = otherToken
	status, body = c.json(http.MethodPost, "/product/"+firmID, map[string]interface{}{"productName": "Vada", "price": "2"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Token does not belong to this vendor", body["message"])
	status, _ = c.json(http.MethodDelete, "/product/"+productID, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = c.json(http.MethodDelete, "/firm/"+firmID, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	c.token = ""
	status, body = c.json(http.MethodGet, "/product/"+firmID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["products"], 1, "rejected calls change nothing")

	c.token = ownerToken
	status, _ = c.json(http.MethodDelete, "/product/"+productID, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = c.json(http.MethodDelete, "/firm/"+firmID, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestWelcomeAndNotFound(t *testing.T) {
	c := newClient(t, false)

	resp, err := http.Get(c.server.URL + "/")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(raw), "Welcome to SUBY"))

	status, body := c.json(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "API route not found", body["message"])

	status, _ = c.json(http.MethodPut, "/vendor/register", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
