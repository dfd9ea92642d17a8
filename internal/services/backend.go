package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
)

// BackendClient talks to the GHogar core API, which owns every business
// rule: quota computation, financial validation and transaction
// persistence. This service only orchestrates.
type BackendClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewBackendClient creates a client for the core API.
func NewBackendClient(baseURL, apiKey string) *BackendClient {
	return &BackendClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the core API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("core api returned status %d: %s", e.Status, e.Body)
}

func (s *BackendClient) do(ctx context.Context, method, endpoint string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	u := s.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (s *BackendClient) getJSON(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	return s.do(ctx, http.MethodGet, endpoint, query, nil, "", out)
}

// GetQuotaStatus fetches the pending quotas and policy constraints for a
// reservation. excludeTransactionID is set in edit mode so the quotas a
// transaction already claims are still listed as available to it.
func (s *BackendClient) GetQuotaStatus(ctx context.Context, reservationID, excludeTransactionID string) (models.QuotaStatus, error) {
	query := url.Values{}
	if excludeTransactionID != "" {
		query.Set("excludeTransaction", excludeTransactionID)
	}
	var status models.QuotaStatus
	err := s.getJSON(ctx, "/api/v1/reservations/"+reservationID+"/quota-status", query, &status)
	if err != nil {
		return models.QuotaStatus{}, err
	}
	if status.ReservationID == "" {
		status.ReservationID = reservationID
	}
	return status, err
}

// ListTransactions fetches all payment transactions.
func (s *BackendClient) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.getJSON(ctx, "/api/v1/transactions", nil, &txs)
	return txs, err
}

// GetTransaction fetches a single transaction by id.
func (s *BackendClient) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	var tx models.Transaction
	err := s.getJSON(ctx, "/api/v1/transactions/"+id, nil, &tx)
	return tx, err
}

// TransactionsByReservation fetches the transactions recorded against one
// reservation.
func (s *BackendClient) TransactionsByReservation(ctx context.Context, reservationID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.getJSON(ctx, "/api/v1/reservations/"+reservationID+"/transactions", nil, &txs)
	return txs, err
}

// CreateTransaction submits a new transaction as a multipart form.
func (s *BackendClient) CreateTransaction(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	return s.sendTransaction(ctx, http.MethodPost, "/api/v1/transactions", in)
}

// UpdateTransaction updates an existing transaction; the payload shape is
// the same as creation, partial fields allowed.
func (s *BackendClient) UpdateTransaction(ctx context.Context, id string, in models.TransactionInput) (models.Transaction, error) {
	return s.sendTransaction(ctx, http.MethodPut, "/api/v1/transactions/"+id, in)
}

// DeleteTransaction removes a transaction by id.
func (s *BackendClient) DeleteTransaction(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/v1/transactions/"+id, nil, nil, "", nil)
}

func (s *BackendClient) sendTransaction(ctx context.Context, method, endpoint string, in models.TransactionInput) (models.Transaction, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := writeTransactionForm(w, in); err != nil {
		return models.Transaction{}, err
	}
	if err := w.Close(); err != nil {
		return models.Transaction{}, err
	}

	var tx models.Transaction
	err := s.do(ctx, method, endpoint, nil, &buf, w.FormDataContentType(), &tx)
	return tx, err
}

// writeTransactionForm encodes the input under the "dto." field prefix the
// core API expects, with the receipt image as the comprobanteFile part.
func writeTransactionForm(w *multipart.Writer, in models.TransactionInput) error {
	fields := map[string]string{
		"dto.paymentDate":   in.PaymentDate.UTC().Format(time.RFC3339),
		"dto.amountPaid":    in.AmountPaid.String(),
		"dto.paymentMethod": string(in.PaymentMethod),
	}
	if in.ReservationID != "" {
		fields["dto.reservationId"] = in.ReservationID
	}
	if in.ReferenceNumber != "" {
		fields["dto.referenceNumber"] = in.ReferenceNumber
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return err
		}
	}
	for i, id := range in.PaymentIDs {
		if err := w.WriteField(fmt.Sprintf("dto.paymentIds[%d]", i), id); err != nil {
			return err
		}
	}
	if len(in.Receipt) > 0 {
		name := in.ReceiptFilename
		if name == "" {
			name = "receipt.png"
		}
		part, err := w.CreateFormFile("comprobanteFile", name)
		if err != nil {
			return err
		}
		if _, err := part.Write(in.Receipt); err != nil {
			return err
		}
	}
	return nil
}

// PDFDocument is a binary export streamed through from the core API.
type PDFDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (s *BackendClient) downloadPDF(ctx context.Context, endpoint, filename string) (PDFDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return PDFDocument{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return PDFDocument{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return PDFDocument{}, &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return PDFDocument{}, err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return PDFDocument{Filename: filename, ContentType: contentType, Data: data}, nil
}

// SchedulePDF downloads the payment schedule document for a reservation.
func (s *BackendClient) SchedulePDF(ctx context.Context, reservationID string) (PDFDocument, error) {
	return s.downloadPDF(ctx, "/api/v1/reservations/"+reservationID+"/schedule.pdf", "schedule-"+reservationID+".pdf")
}

// ProcessedPaymentsPDF downloads the processed-payments document for a
// reservation.
func (s *BackendClient) ProcessedPaymentsPDF(ctx context.Context, reservationID string) (PDFDocument, error) {
	return s.downloadPDF(ctx, "/api/v1/reservations/"+reservationID+"/processed-payments.pdf", "processed-payments-"+reservationID+".pdf")
}

// ReceiptPDF downloads the receipt document for a transaction.
func (s *BackendClient) ReceiptPDF(ctx context.Context, transactionID string) (PDFDocument, error) {
	return s.downloadPDF(ctx, "/api/v1/transactions/"+transactionID+"/receipt.pdf", "receipt-"+transactionID+".pdf")
}
