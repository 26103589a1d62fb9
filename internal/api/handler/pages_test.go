package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"taskhunt_web/internal/common"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBody(t *testing.T) {
	post := func(contentType, body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		return req
	}

	t.Run("form", func(t *testing.T) {
		req := post("application/x-www-form-urlencoded", "title=Landing&tags=GO&tags=REST")
		var dst struct{}
		isJSON, err := readBody(req, &dst)
		require.NoError(t, err)
		assert.False(t, isJSON)
		assert.Equal(t, "Landing", req.PostFormValue("title"))
		assert.Equal(t, []string{"GO", "REST"}, req.PostForm["tags"])
	})

	t.Run("malformed form is a bad request", func(t *testing.T) {
		_, err := readBody(post("application/x-www-form-urlencoded", "title=%zz"), &struct{}{})
		assert.ErrorIs(t, err, common.ErrBadRequest)
		assert.Equal(t, http.StatusBadRequest, common.HTTPStatusFromError(err))
	})

	t.Run("json", func(t *testing.T) {
		var dst struct {
			Title string `json:"title"`
		}
		isJSON, err := readBody(post("application/json; charset=utf-8", `{"title":"Landing"}`), &dst)
		require.NoError(t, err)
		assert.True(t, isJSON)
		assert.Equal(t, "Landing", dst.Title)
	})

	t.Run("malformed json is a bad request", func(t *testing.T) {
		isJSON, err := readBody(post("application/json", `{"title":`), &struct{}{})
		assert.True(t, isJSON)
		assert.ErrorIs(t, err, common.ErrBadRequest)
	})
}

func TestLocalPath(t *testing.T) {
	assert.Equal(t, "/mytasks", localPath("/mytasks", "/home"))
	assert.Equal(t, "/home", localPath("", "/home"))
	assert.Equal(t, "/home", localPath("https://evil.example", "/home"))
	assert.Equal(t, "/home", localPath("//evil.example", "/home"))
	assert.Equal(t, "/home", localPath("/\\evil.example", "/home"))
}
