// Command audit-smoke exercises the audit service end to end against the
// in-memory graph client: index setup, entity and relationship writes,
// and each query path. Useful for eyeballing behavior and metrics without
// a running graph store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"graphtrail/internal/audit/models"
	"graphtrail/internal/audit/service"
	"graphtrail/internal/graphstore"
	"graphtrail/internal/platform/metrics"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client := graphstore.NewInMemory()
	m := metrics.New()
	svc := service.NewService(client, logger, service.WithMetrics(m))

	// Metrics server in background for inspection
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		fmt.Println("Metrics available at http://localhost:9090/metrics")
		if err := http.ListenAndServe(":9090", nil); err != nil {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	ctx := context.Background()

	fmt.Println("\n=== Audit Trail Smoke Test ===")

	fmt.Println("1. Ensuring indexes (twice, second call is a no-op)...")
	for i := 0; i < 2; i++ {
		if err := svc.CreateIndexes(ctx); err != nil {
			fmt.Printf("   index setup failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("\n2. Logging an entity lifecycle...")
	created, err := svc.LogEntityChange(ctx, models.EntityCreated, "e1", "PERSON",
		nil, models.PropertyMap{"name": "John"}, "default", "doc-1")
	if err != nil {
		fmt.Printf("   create failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("   created event %s at %s\n", created.EventID, created.Timestamp.Format(time.RFC3339Nano))

	if _, err := svc.LogEntityChange(ctx, models.EntityUpdated, "e1", "PERSON",
		models.PropertyMap{"name": "John"}, models.PropertyMap{"name": "John Doe"}, "default", "doc-2"); err != nil {
		fmt.Printf("   update failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n3. Logging a relationship deletion...")
	if _, err := svc.LogRelationshipChange(ctx, models.RelationshipDeleted, "e1", "e2", "KNOWS",
		models.PropertyMap{"since": 2020}, nil, "default", ""); err != nil {
		fmt.Printf("   relationship delete failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n4. Querying entity history for e1...")
	history, err := svc.GetEntityHistory(ctx, "e1", "default", 0)
	if err != nil {
		fmt.Printf("   history query failed: %v\n", err)
		os.Exit(1)
	}
	for i, event := range history {
		fmt.Printf("   [%d] %s old=%v new=%v\n", i, event.EventType, event.OldProperties, event.NewProperties)
	}

	fmt.Println("\n5. Querying recent changes...")
	recent, err := svc.GetRecentChanges(ctx, "default", 10)
	if err != nil {
		fmt.Printf("   recent query failed: %v\n", err)
		os.Exit(1)
	}
	for i, event := range recent {
		fmt.Printf("   [%d] %s %s\n", i, event.Timestamp.Format(time.RFC3339Nano), event.EventType)
	}

	fmt.Println("\n6. Querying a time range covering everything...")
	ranged, err := svc.GetChangesByTimeRange(ctx, "default",
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	if err != nil {
		fmt.Printf("   range query failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("   %d events in range, store holds %d nodes\n", len(ranged), client.NodeCount())

	fmt.Println("\nDone. Filter metrics with: curl -s http://localhost:9090/metrics | grep graphtrail_audit")
	fmt.Println("Press Ctrl+C to exit...")
	select {}
}
