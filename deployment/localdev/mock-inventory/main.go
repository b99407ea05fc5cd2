package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

type serviceNode struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	Tier              string  `json:"tier"`
	Status            string  `json:"status"`
	CPUUsage          float64 `json:"cpu_usage"`
	MemoryUsage       float64 `json:"memory_usage"`
	Latency           float64 `json:"latency"`
	RequestsPerMinute int     `json:"rpm"`
	ErrorRate         float64 `json:"error_rate"`
}

type dependencyEdge struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Type       string  `json:"type"`
	Latency    float64 `json:"latency"`
	Throughput int     `json:"throughput"`
}

func main() {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/topology", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, map[string]any{
			"nodes": []serviceNode{
				{ID: "gateway", Name: "API Gateway", Type: "gateway", Tier: "frontend", Status: "healthy", CPUUsage: 18, MemoryUsage: 30, Latency: 22, RequestsPerMinute: 900, ErrorRate: 0.2},
				{ID: "checkout", Name: "Checkout", Type: "service", Tier: "backend", Status: "healthy", CPUUsage: 24, MemoryUsage: 35, Latency: 45, RequestsPerMinute: 320, ErrorRate: 0.4},
				{ID: "payments", Name: "Payments", Type: "service", Tier: "backend", Status: "healthy", CPUUsage: 20, MemoryUsage: 28, Latency: 60, RequestsPerMinute: 280, ErrorRate: 0.3},
				{ID: "orders-db", Name: "Orders DB", Type: "database", Tier: "data", Status: "healthy", CPUUsage: 15, MemoryUsage: 40, Latency: 8, RequestsPerMinute: 500, ErrorRate: 0.1},
				{ID: "session-cache", Name: "Session Cache", Type: "cache", Tier: "data", Status: "healthy", CPUUsage: 8, MemoryUsage: 22, Latency: 2, RequestsPerMinute: 1500, ErrorRate: 0.05},
			},
			"edges": []dependencyEdge{
				{Source: "gateway", Target: "checkout", Type: "http", Latency: 3, Throughput: 320},
				{Source: "gateway", Target: "session-cache", Type: "tcp", Latency: 1, Throughput: 1500},
				{Source: "checkout", Target: "payments", Type: "http", Latency: 5, Throughput: 280},
				{Source: "checkout", Target: "orders-db", Type: "tcp", Latency: 2, Throughput: 400},
				{Source: "payments", Target: "orders-db", Type: "tcp", Latency: 2, Throughput: 150},
			},
		})
	})

	logger := log.New(log.Writer(), "inventory-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":8080",
		Handler: logRequests(logger, mux),
	}

	logger.Println("listening on :8080")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
