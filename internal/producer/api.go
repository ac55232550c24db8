package producer

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RenatoCabral2022/WaveStream/internal/ringbuffer"
)

const defaultSnapshotPoints = 800

type snapshotResponse struct {
	Count         int       `json:"count"`
	TotalProduced uint64    `json:"totalProduced"`
	Samples       []float64 `json:"samples"`
}

// StatusHandler returns the generator's read-only HTTP surface: health,
// Prometheus metrics, producer status and a peek at the newest samples.
func (p *Producer) StatusHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", p.handleStatus)
		r.Get("/snapshot", p.handleSnapshot)
	})
	return r
}

func (p *Producer) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p.Status())
}

// handleSnapshot serves GET /v1/snapshot?n=K. The copy is taken without
// coordinating with the loop, so the newest frame may be partially written.
func (p *Producer) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	n := defaultSnapshotPoints
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > ringbuffer.Capacity {
			http.Error(w, "invalid n: want 1.."+strconv.Itoa(ringbuffer.Capacity), http.StatusBadRequest)
			return
		}
		n = v
	}

	samples := p.ring.Snapshot(n)
	if samples == nil {
		samples = []float64{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshotResponse{
		Count:         len(samples),
		TotalProduced: p.ring.TotalProduced(),
		Samples:       samples,
	})
}
