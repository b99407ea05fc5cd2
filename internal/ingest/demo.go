package ingest

import (
	"hash/fnv"
	"strings"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// Demo returns the built-in 18-node e-commerce topology. Baseline metrics
// are derived deterministically from node ids, so repeated calls produce
// identical topologies.
func Demo() models.Topology {
	frontend := []string{"Web App", "Mobile API", "Landing Page"}
	backend := []string{
		"Auth Service", "User Service", "Payment Service", "Order Service",
		"Search Service", "Notification Service", "Inventory Service",
	}
	dataStores := []string{"Primary DB", "User DB", "Payment DB", "Search Index (ES)"}
	external := []string{"Stripe API", "SendGrid", "Twilio"}

	var nodes []models.ServiceNode
	for _, name := range frontend {
		nodes = append(nodes, demoNode(name, models.TypeService, "frontend"))
	}
	for _, name := range backend {
		nodes = append(nodes, demoNode(name, models.TypeService, "backend"))
	}
	for _, name := range dataStores {
		nodes = append(nodes, demoNode(name, models.TypeDatabase, "data"))
	}
	nodes = append(nodes, demoNode("Cache (Redis)", models.TypeCache, "data"))
	for _, name := range external {
		nodes = append(nodes, demoNode(name, models.TypeExternal, "external"))
	}

	dependencies := [][2]string{
		{"Web App", "Auth Service"},
		{"Web App", "Search Service"},
		{"Web App", "Order Service"},
		{"Mobile API", "Auth Service"},
		{"Mobile API", "User Service"},
		{"Landing Page", "User Service"},

		{"Auth Service", "User DB"},
		{"User Service", "User DB"},
		{"User Service", "Cache (Redis)"},

		{"Order Service", "Payment Service"},
		{"Order Service", "Inventory Service"},
		{"Order Service", "Primary DB"},

		{"Payment Service", "Payment DB"},
		{"Payment Service", "Stripe API"},

		{"Search Service", "Search Index (ES)"},
		{"Inventory Service", "Primary DB"},

		{"Notification Service", "SendGrid"},
		{"Notification Service", "Twilio"},
		{"Order Service", "Notification Service"},
	}

	var edges []models.DependencyEdge
	for _, dep := range dependencies {
		src, dst := demoID(dep[0]), demoID(dep[1])
		edges = append(edges, models.DependencyEdge{
			Source:     src,
			Target:     dst,
			Type:       "http",
			Latency:    demoRange(src+"->"+dst, 1, 10),
			Throughput: int(demoRange(dst+"<-"+src, 50, 500)),
		})
	}

	return models.Topology{Nodes: nodes, Edges: edges}
}

func demoNode(name string, serviceType models.ServiceType, tier string) models.ServiceNode {
	id := demoID(name)
	node := models.ServiceNode{
		ID:                id,
		Name:              name,
		Type:              serviceType,
		Tier:              tier,
		Status:            models.StatusHealthy,
		CPUUsage:          demoRange(id+":cpu", 5, 25),
		MemoryUsage:       demoRange(id+":mem", 15, 35),
		Latency:           demoRange(id+":lat", 10, 80),
		RequestsPerMinute: int(demoRange(id+":rpm", 50, 500)),
		ErrorRate:         demoRange(id+":err", 0.05, 1.0),
	}
	if serviceType == models.TypeDatabase {
		node.ConnectionPoolUsage = demoRange(id+":pool", 10, 40)
	}
	if serviceType == models.TypeService || serviceType == models.TypeExternal {
		node.QueueDepth = int(demoRange(id+":queue", 0, 100))
	}
	return node
}

// demoID normalises a display name into a stable node id.
func demoID(name string) string {
	id := strings.ToLower(name)
	id = strings.ReplaceAll(id, " ", "-")
	id = strings.ReplaceAll(id, "(", "")
	id = strings.ReplaceAll(id, ")", "")
	return id
}

// demoRange maps a seed string onto [lo,hi) via FNV-1a.
func demoRange(seed string, lo, hi float64) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	frac := float64(h.Sum32()%1000) / 999.0
	return lo + (hi-lo)*frac
}
