package health

import (
	"encoding/json"
	"net/http"
)

// Checker produces the current health status on demand.
type Checker func() Status

// Handler returns an HTTP handler serving the checker's status as JSON.
// Unhealthy statuses are served with 503 so load balancers can act on the
// status code alone.
func Handler(check Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := check()

		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)

		data, err := json.Marshal(status)
		if err != nil {
			// Status marshaling cannot realistically fail; keep the contract anyway
			_, _ = w.Write([]byte(`{"healthy":false,"status":"unhealthy"}`))
			return
		}
		_, _ = w.Write(data)
	}
}
