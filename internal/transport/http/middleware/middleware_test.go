package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-booking/internal/core/auth"
	"restaurant-booking/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

func envCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Code
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func okRoute(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"code": 0}) })
	return r
}

func TestRateLimit(t *testing.T) {
	r := okRoute(RateLimit(0.001, 1))
	assert.Equal(t, 0, envCode(t, do(r, httptest.NewRequest(http.MethodGet, "/x", nil))))
	assert.Equal(t, 429, envCode(t, do(r, httptest.NewRequest(http.MethodGet, "/x", nil))))
}

func TestRateLimitPerIP(t *testing.T) {
	r := okRoute(RateLimitPerIP(0.001, 1))
	from := func(ip string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = ip + ":1234"
		return req
	}
	assert.Equal(t, 0, envCode(t, do(r, from("10.0.0.1"))))
	assert.Equal(t, 429, envCode(t, do(r, from("10.0.0.1"))))
	assert.Equal(t, 0, envCode(t, do(r, from("10.0.0.2"))))
}

func TestRequestID(t *testing.T) {
	r := okRoute(RequestID())

	w := do(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get(KeyRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(KeyRequestID, "abc-123")
	assert.Equal(t, "abc-123", do(r, req).Header().Get(KeyRequestID))

	for _, bad := range []string{strings.Repeat("a", 100), "evil\nline", "a b"} {
		req = httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(KeyRequestID, bad)
		assert.Len(t, do(r, req).Header().Get(KeyRequestID), 36, bad)
	}
}

func TestTimeoutWritesEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) { <-c.Request.Context().Done() })

	w := do(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, 504, envCode(t, w))
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/x", func(c *gin.Context) {
		var in map[string]any
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusOK, gin.H{"code": 400})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"name":"far too long"}`))
	assert.Equal(t, 400, envCode(t, do(r, req)))
}

func TestAuthJWT(t *testing.T) {
	j := auth.NewJWTer("secret", "test", time.Hour)
	r := gin.New()
	r.GET("/any", AuthJWT(j, nil, nil, ""), func(c *gin.Context) {
		a := ActorFrom(c)
		jti, ttl := TokenFrom(c)
		c.JSON(http.StatusOK, gin.H{"code": 0, "id": a.ID, "role": a.Role, "jti": jti, "ttl_ok": ttl > 0})
	})
	r.GET("/admin", AuthJWT(j, nil, nil, domain.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0})
	})

	withToken := func(path, tok string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		return req
	}

	assert.Equal(t, 401, envCode(t, do(r, withToken("/any", ""))))
	assert.Equal(t, 401, envCode(t, do(r, withToken("/any", "not-a-jwt"))))

	bad, err := j.Issue("u-1", "chef")
	require.NoError(t, err)
	assert.Equal(t, 401, envCode(t, do(r, withToken("/any", bad))))

	tok, err := j.Issue("u-1", "waiter")
	require.NoError(t, err)
	w := do(r, withToken("/any", tok))
	var body struct {
		Code  int    `json:"code"`
		ID    string `json:"id"`
		Role  string `json:"role"`
		JTI   string `json:"jti"`
		TTLOK bool   `json:"ttl_ok"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "u-1", body.ID)
	assert.Equal(t, "waiter", body.Role)
	assert.NotEmpty(t, body.JTI)
	assert.True(t, body.TTLOK)

	assert.Equal(t, 403, envCode(t, do(r, withToken("/admin", tok))))
}

type userMap map[string]*domain.User

func (m userMap) FindByID(_ context.Context, id string) (*domain.User, error) {
	if id == "broken" {
		return nil, errors.New("db down")
	}
	return m[id], nil
}

func TestAuthJWTUsesStoredRole(t *testing.T) {
	j := auth.NewJWTer("secret", "test", time.Hour)
	users := userMap{
		"u-1": {ID: "u-1", Role: domain.RoleCustomer},
		"u-2": {ID: "u-2", Role: domain.RoleAdmin},
	}
	r := gin.New()
	r.GET("/admin", AuthJWT(j, nil, users, domain.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"code": 0, "role": ActorFrom(c).Role})
	})
	get := func(uid, role string) *httptest.ResponseRecorder {
		tok, err := j.Issue(uid, role)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		return do(r, req)
	}

	// token still says admin, account was demoted
	assert.Equal(t, 403, envCode(t, get("u-1", "admin")))
	// promoted after the token was issued
	assert.Equal(t, 0, envCode(t, get("u-2", "customer")))
	assert.Equal(t, 401, envCode(t, get("gone", "admin")))
	assert.Equal(t, 500, envCode(t, get("broken", "admin")))
}

func TestMaskQuery(t *testing.T) {
	got := maskQuery(map[string][]string{"password": {"x"}, "Token": {"y"}, "q": {"z"}})
	assert.Equal(t, []string{"****"}, got["password"])
	assert.Equal(t, []string{"****"}, got["Token"])
	assert.Equal(t, []string{"z"}, got["q"])
}
