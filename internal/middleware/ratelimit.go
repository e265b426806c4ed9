package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit allows max requests per client IP over window, refilled
// continuously. Idle clients are forgotten after a window of inactivity.
type RateLimit struct {
	max     int
	window  time.Duration
	message string
	now     func() time.Time

	mu      sync.Mutex
	clients map[string]*client
	swept   time.Time
}

type client struct {
	limiter *rate.Limiter
	seen    time.Time
}

func NewRateLimit(max int, window time.Duration, message string) *RateLimit {
	return &RateLimit{
		max:     max,
		window:  window,
		message: message,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

func (rl *RateLimit) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := rl.limiter(c.ClientIP())
		c.Header("RateLimit-Limit", strconv.Itoa(rl.max))
		c.Header("RateLimit-Remaining", strconv.Itoa(int(lim.TokensAt(rl.now()))))
		if !lim.AllowN(rl.now(), 1) {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			abort(c, http.StatusTooManyRequests, rl.message)
			return
		}
		c.Next()
	}
}

func (rl *RateLimit) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.swept) > rl.window {
		for k, cl := range rl.clients {
			if now.Sub(cl.seen) > rl.window {
				delete(rl.clients, k)
			}
		}
		rl.swept = now
	}

	cl, ok := rl.clients[ip]
	if !ok {
		every := rl.window / time.Duration(rl.max)
		cl = &client{limiter: rate.NewLimiter(rate.Every(every), rl.max)}
		rl.clients[ip] = cl
	}
	cl.seen = now
	return cl.limiter
}
