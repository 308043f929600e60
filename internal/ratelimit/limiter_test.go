package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestLocal_AllowsBurstThenRejects(t *testing.T) {
	l := NewLocal(2, time.Hour)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
			t.Fatalf("hit %d: expected allowed", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "1.2.3.4"); ok {
		t.Fatalf("expected third hit rejected")
	}
	if ok, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Fatalf("expected other key unaffected")
	}
}

func TestRedisWindow_KeyIsBucketed(t *testing.T) {
	r := NewRedisWindow(nil, "", 5, time.Hour)
	r.now = func() time.Time { return time.UnixMilli(3*time.Hour.Milliseconds() + 10) }
	if got := r.windowKey("1.2.3.4"); got != "ratelimit:submit:1.2.3.4:3" {
		t.Fatalf("unexpected key %q", got)
	}
}

type stubLimiter struct {
	ok  bool
	err error
}

func (s stubLimiter) Allow(context.Context, string) (bool, error) { return s.ok, s.err }

func serve(l Limiter) int {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/s", Middleware(l), func(c *gin.Context) { c.Status(http.StatusCreated) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/s", nil))
	return w.Code
}

func TestMiddleware(t *testing.T) {
	if code := serve(stubLimiter{ok: true}); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if code := serve(stubLimiter{ok: false}); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := serve(stubLimiter{err: errors.New("redis down")}); code != http.StatusCreated {
		t.Fatalf("expected fail-open 201, got %d", code)
	}
}
