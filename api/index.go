package handler

import (
	"net/http"
	"sync"

	_ "libres/docs"

	"libres/config"
	"libres/di"
	"libres/shared/logger"
	transport "libres/transport/http"
)

var (
	server *transport.HTTP
	once   sync.Once
)

// Handler is the serverless entrypoint. Warm invocations reuse the wired server.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		server = di.InitializeService()
	})

	server.ServeHTTP(w, r)
}
