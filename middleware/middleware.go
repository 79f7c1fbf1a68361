package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nvrzn/grabbot/utils"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// Chain applies middlewares to handler in the order given.
func Chain(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			handler = middlewares[i](handler)
		}
	}
	return handler
}

// SecretToken rejects webhook requests that do not carry the shared secret
// registered with the transport. An empty secret disables the check.
func SecretToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				got := r.Header.Get(secretTokenHeader)
				if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
					logrus.WithField("remote", r.RemoteAddr).Warn("Webhook request with bad secret token")
					utils.HandleError(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Logging records each inbound webhook request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Info("Handled request")
	})
}
