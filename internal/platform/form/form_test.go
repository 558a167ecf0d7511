package form

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/georgemunganga/suby-backend/internal/platform/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMultipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("firmName", "  Tasty Bites "))
	require.NoError(t, mw.WriteField("category", "veg"))
	require.NoError(t, mw.WriteField("category", "non-veg,veg"))
	require.NoError(t, mw.WriteField("bestSeller", "true"))
	fw, err := mw.CreateFormFile("image", "burger.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/firm/x", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	v, err := Parse(httptest.NewRecorder(), req, 1<<20, "image")
	require.NoError(t, err)

	assert.Equal(t, "Tasty Bites", v.String("firmName"))
	assert.Equal(t, []string{"veg", "non-veg"}, v.Strings("category"))
	assert.Equal(t, []string{}, v.Strings("region"))
	assert.True(t, v.Bool("bestSeller"))
	require.NotNil(t, v.File())
	assert.Equal(t, "burger.png", v.File().Filename)
}

func TestParseJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/product/x",
		strings.NewReader(`{"productName":"Burger","price":5.99,"category":["veg"],"bestSeller":false,"offer":null}`))
	req.Header.Set("Content-Type", "application/json")

	v, err := Parse(httptest.NewRecorder(), req, 1<<20, "image")
	require.NoError(t, err)

	assert.Equal(t, "Burger", v.String("productName"))
	assert.Equal(t, "5.99", v.String("price"))
	assert.Equal(t, []string{"veg"}, v.Strings("category"))
	assert.False(t, v.Bool("bestSeller"))
	assert.Equal(t, "", v.String("offer"))
	assert.Nil(t, v.File())
}

func TestParseErrors(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"firmName":`))
		_, err := Parse(httptest.NewRecorder(), req, 1<<20, "image")
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("body too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"firmName":"`+strings.Repeat("a", 64)+`"}`))
		_, err := Parse(httptest.NewRecorder(), req, 16, "image")
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}
