package webserver

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"

	"github.com/BuseDenizH/EssayEval-NLP/internal/webapi"
)

// newHandler builds the API mux and wraps it with compression and CORS.
// The root path redirects to the rendered report.
func newHandler(cfg Config, bench webapi.Benchmarker) http.Handler {
	mux := http.NewServeMux()

	var limit func(http.Handler) http.Handler
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		rl := webapi.NewRateLimiter(cfg.RateLimit, burst)
		rl.TrustProxies(cfg.TrustedProxies...)
		limit = rl.Middleware
	}

	webapi.RegisterRoutes(mux, bench, webapi.Options{
		Delimiter: cfg.Delimiter,
		Logger:    cfg.Logger,
	}, limit)

	mux.Handle("GET /{$}", http.RedirectHandler("/api/report.html", http.StatusFound))

	return webapi.CORSMiddleware(gzhttp.GzipHandler(mux), cfg.AllowedOrigins...)
}
