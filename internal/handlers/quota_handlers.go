package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/reconcile"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/services"
)

type QuotaHandler struct {
	catalogs *services.CatalogService
	backend  *services.BackendClient
}

func NewQuotaHandler(catalogs *services.CatalogService, backend *services.BackendClient) *QuotaHandler {
	return &QuotaHandler{catalogs: catalogs, backend: backend}
}

// QuotaStatus returns the pending quotas and policy constraints for a
// reservation. fresh=true forces a re-fetch (the manual refresh path);
// excludeTransaction keeps an edited transaction's quotas visible.
func (h *QuotaHandler) QuotaStatus(c echo.Context) error {
	reservationID := c.Param("id")
	exclude := c.QueryParam("excludeTransaction")
	fresh := c.QueryParam("fresh") == "true"

	catalog, version, err := h.catalogs.Load(c.Request().Context(), reservationID, exclude, fresh)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"catalog":        catalog,
		"catalogVersion": version,
		"totalAvailable": catalog.TotalAvailable(),
	})
}

// SchedulePreview projects installment due dates for a financing plan.
// Query params: start (RFC 3339 date), installments, total, recurrence
// (optional RRULE).
func (h *QuotaHandler) SchedulePreview(c echo.Context) error {
	start, err := time.Parse("2006-01-02", c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start must be a YYYY-MM-DD date")
	}
	installments, err := strconv.Atoi(c.QueryParam("installments"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "installments must be an integer")
	}
	total, err := decimal.NewFromString(c.QueryParam("total"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "total must be a decimal amount")
	}

	entries, err := services.PreviewSchedule(start, installments, c.QueryParam("recurrence"), total)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservationId": c.Param("id"),
		"entries":       entries,
	})
}

// Preview recomputes totals for an ad hoc selection without a draft, for
// read-only screens that show reconciliation progress.
func (h *QuotaHandler) Preview(c echo.Context) error {
	var req struct {
		QuotaIDs []string `json:"quotaIds"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	catalog, version, err := h.catalogs.Load(c.Request().Context(), c.Param("id"), c.QueryParam("excludeTransaction"), false)
	if err != nil {
		return err
	}

	selection := reconcile.NewSelection(req.QuotaIDs...)
	selection.Prune(catalog)
	total := reconcile.ComputeTotal(selection, catalog)
	available := catalog.TotalAvailable()

	return c.JSON(http.StatusOK, echo.Map{
		"catalogVersion": version,
		"selected":       selection.IDs(),
		"total":          total,
		"totalAvailable": available,
		"progress":       reconcile.ComputeProgress(total, available),
		"warnings":       reconcile.CheckPolicy(selection.Len(), catalog.Constraints),
	})
}

func (h *QuotaHandler) servePDF(c echo.Context, doc services.PDFDocument) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
	return c.Blob(http.StatusOK, doc.ContentType, doc.Data)
}

// SchedulePDF streams the payment schedule document from the core API.
func (h *QuotaHandler) SchedulePDF(c echo.Context) error {
	doc, err := h.backend.SchedulePDF(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return h.servePDF(c, doc)
}

// ProcessedPaymentsPDF streams the processed-payments document.
func (h *QuotaHandler) ProcessedPaymentsPDF(c echo.Context) error {
	doc, err := h.backend.ProcessedPaymentsPDF(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return h.servePDF(c, doc)
}
