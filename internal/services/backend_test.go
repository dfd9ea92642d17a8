package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
)

func TestGetQuotaStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/reservations/res-1/quota-status" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("excludeTransaction"); got != "tx-3" {
			t.Errorf("excludeTransaction = %s; want tx-3", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"pendingQuotas": [
				{"id": "a", "amountDue": "100", "paid": false},
				{"id": "b", "amountDue": "250", "paid": false}
			],
			"constraints": {"minQuotasPerTransaction": 1, "maxQuotasPerTransaction": 6, "currency": "PEN"}
		}`)
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, "secret")
	status, err := client.GetQuotaStatus(context.Background(), "res-1", "tx-3")
	if err != nil {
		t.Fatalf("GetQuotaStatus() error = %v", err)
	}
	if len(status.PendingQuotas) != 2 {
		t.Fatalf("got %d quotas; want 2", len(status.PendingQuotas))
	}
	if status.ReservationID != "res-1" {
		t.Errorf("ReservationID = %s; want res-1", status.ReservationID)
	}
	if status.TotalAvailable().String() != "350" {
		t.Errorf("TotalAvailable = %s; want 350", status.TotalAvailable())
	}
	if status.Constraints.Currency != "PEN" {
		t.Errorf("Currency = %s; want PEN", status.Constraints.Currency)
	}
}

func TestCreateTransactionMultipartEncoding(t *testing.T) {
	var received struct {
		fields map[string]string
		ids    []string
		file   []byte
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s; want POST", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not a multipart request: %v", err)
		}
		received.fields = map[string]string{}
		for name, values := range r.MultipartForm.Value {
			received.fields[name] = values[0]
		}
		received.ids = []string{
			r.FormValue("dto.paymentIds[0]"),
			r.FormValue("dto.paymentIds[1]"),
		}
		file, _, err := r.FormFile("comprobanteFile")
		if err != nil {
			t.Fatalf("comprobanteFile missing: %v", err)
		}
		defer file.Close()
		received.file, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "tx-1", "reservationId": "res-1"}`)
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, "secret")
	tx, err := client.CreateTransaction(context.Background(), models.TransactionInput{
		PaymentDate:     time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
		AmountPaid:      decimal.NewFromInt(350),
		PaymentMethod:   models.PaymentMethodBankTransfer,
		ReservationID:   "res-1",
		ReferenceNumber: "OP-771",
		PaymentIDs:      []string{"a", "b"},
		Receipt:         []byte("fake-png"),
		ReceiptFilename: "voucher.png",
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	if tx.ID != "tx-1" {
		t.Errorf("tx.ID = %s; want tx-1", tx.ID)
	}

	want := map[string]string{
		"dto.paymentDate":     "2026-03-15T10:30:00Z",
		"dto.amountPaid":      "350",
		"dto.paymentMethod":   "bank_transfer",
		"dto.reservationId":   "res-1",
		"dto.referenceNumber": "OP-771",
	}
	for name, value := range want {
		if received.fields[name] != value {
			t.Errorf("field %s = %q; want %q", name, received.fields[name], value)
		}
	}
	if received.ids[0] != "a" || received.ids[1] != "b" {
		t.Errorf("paymentIds = %v; want [a b]", received.ids)
	}
	if string(received.file) != "fake-png" {
		t.Errorf("receipt bytes = %q", received.file)
	}
}

func TestBackendErrorSurfacesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota already claimed", http.StatusConflict)
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, "secret")
	_, err := client.GetTransaction(context.Background(), "tx-1")

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error = %T(%v); want *APIError", err, err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Errorf("Status = %d; want 409", apiErr.Status)
	}
}

func TestDeleteTransaction(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, "secret")
	if err := client.DeleteTransaction(context.Background(), "tx-2"); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if method != http.MethodDelete || path != "/api/v1/transactions/tx-2" {
		t.Errorf("request = %s %s", method, path)
	}
}

func TestSchedulePDFDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/reservations/res-1/schedule.pdf" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer server.Close()

	client := NewBackendClient(server.URL, "secret")
	doc, err := client.SchedulePDF(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("SchedulePDF() error = %v", err)
	}
	if doc.ContentType != "application/pdf" {
		t.Errorf("ContentType = %s", doc.ContentType)
	}
	if doc.Filename != "schedule-res-1.pdf" {
		t.Errorf("Filename = %s", doc.Filename)
	}
	if string(doc.Data) != "%PDF-1.7 fake" {
		t.Errorf("Data = %q", doc.Data)
	}
}
