package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/services"
)

// transactionCacheTTL bounds how long transaction reads may be served
// stale; mutations invalidate earlier through the registry.
const transactionCacheTTL = 5 * time.Minute

type TransactionHandler struct {
	backend *services.BackendClient
	cache   *services.RedisCache
	inv     *services.Invalidator
}

func NewTransactionHandler(backend *services.BackendClient, cache *services.RedisCache, inv *services.Invalidator) *TransactionHandler {
	return &TransactionHandler{backend: backend, cache: cache, inv: inv}
}

// List returns all transactions, cached under the transactions group.
func (h *TransactionHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	txs, err := services.GetOrSet(h.cache, ctx, services.GroupTransactions+":all", transactionCacheTTL, func() ([]models.Transaction, error) {
		return h.backend.ListTransactions(ctx)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txs)
}

// Get returns one transaction by id.
func (h *TransactionHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	tx, err := services.GetOrSet(h.cache, ctx, services.GroupTransactions+":id:"+id, transactionCacheTTL, func() (models.Transaction, error) {
		return h.backend.GetTransaction(ctx, id)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tx)
}

// ByReservation returns the transactions recorded against a reservation.
func (h *TransactionHandler) ByReservation(c echo.Context) error {
	ctx := c.Request().Context()
	reservationID := c.Param("id")
	txs, err := services.GetOrSet(h.cache, ctx, services.GroupTransactions+":res:"+reservationID, transactionCacheTTL, func() ([]models.Transaction, error) {
		return h.backend.TransactionsByReservation(ctx, reservationID)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txs)
}

// Delete removes a transaction. Deletion un-claims quotas, so the same
// cache groups as submission go stale.
func (h *TransactionHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	tx, err := h.backend.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := h.backend.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	_ = h.inv.Publish(ctx, services.MutationEvent{
		ReservationID: tx.ReservationID,
		TransactionID: id,
	})
	return c.NoContent(http.StatusNoContent)
}

// ReceiptPDF streams the receipt document for a transaction.
func (h *TransactionHandler) ReceiptPDF(c echo.Context) error {
	doc, err := h.backend.ReceiptPDF(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	return c.Blob(http.StatusOK, doc.ContentType, doc.Data)
}
