package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/heysubinoy/localkv/internal/store"
)

type opStats struct {
	Count      uint64 `json:"count"`
	AvgLatency string `json:"avg_latency"`
}

type metricsResponse struct {
	Entries    int                `json:"entries"`
	Errors     uint64             `json:"errors"`
	Operations map[string]opStats `json:"operations"`
}

// MetricsHandler serves backend counters as JSON. With ?reset=true the
// counters are zeroed after being read.
func MetricsHandler(instrumented *store.InstrumentedStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := instrumented.GetMetrics()

		resp := metricsResponse{
			Entries: -1,
			Errors:  m.ErrorCount,
			Operations: map[string]opStats{
				"get":    {m.GetCount, m.GetAvgLatency.String()},
				"set":    {m.SetCount, m.SetAvgLatency.String()},
				"delete": {m.DeleteCount, m.DeleteAvgLatency.String()},
				"clear":  {m.ClearCount, m.ClearAvgLatency.String()},
				"scan":   {m.ScanCount, m.ScanAvgLatency.String()},
			},
		}
		// Len is itself counted as a scan in the next snapshot.
		if n, err := instrumented.Len(); err == nil {
			resp.Entries = n
		}

		if reset, _ := strconv.ParseBool(r.URL.Query().Get("reset")); reset {
			instrumented.ResetMetrics()
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
