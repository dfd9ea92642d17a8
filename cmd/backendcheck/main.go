package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"time"

	"github.com/joho/godotenv"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/config"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/services"
)

// Manual smoke check against the core API: fetches the quota status for a
// reservation and prints what the reconciliation flow would see.
func main() {
	reservationID := flag.String("reservation", "", "reservation id to query")
	flag.Parse()

	if *reservationID == "" {
		stdlog.Fatal("usage: backendcheck -reservation <id>")
	}

	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found, using system environment")
	}
	config.Load()

	backend := services.NewBackendClient(config.AppConfig.BackendBaseURL, config.AppConfig.BackendAPIKey)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	status, err := backend.GetQuotaStatus(ctx, *reservationID, "")
	if err != nil {
		stdlog.Fatalf("quota status fetch failed: %v", err)
	}

	fmt.Printf("reservation %s — %d pending quotas, currency %s, min/max per transaction %d/%d\n",
		status.ReservationID, len(status.PendingQuotas), status.Constraints.Currency,
		status.Constraints.MinQuotasPerTransaction, status.Constraints.MaxQuotasPerTransaction)
	for _, q := range status.PendingQuotas {
		fmt.Printf("  %s  due %s  amount %s  remaining %s\n",
			q.ID, q.DueDate.Format("2006-01-02"), q.AmountDue, q.Remaining())
	}
	fmt.Printf("total available: %s\n", status.TotalAvailable())
}
