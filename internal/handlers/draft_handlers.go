package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/services"
)

// maxReceiptBytes caps receipt uploads at 8 MiB.
const maxReceiptBytes = 8 << 20

type DraftHandler struct {
	drafts     *services.DraftService
	submission *services.SubmissionService
	catalogs   *services.CatalogService
}

func NewDraftHandler(drafts *services.DraftService, submission *services.SubmissionService, catalogs *services.CatalogService) *DraftHandler {
	return &DraftHandler{drafts: drafts, submission: submission, catalogs: catalogs}
}

type createDraftRequest struct {
	ReservationID string `json:"reservationId"`
	TransactionID string `json:"transactionId"`
}

// Create opens a draft session, empty or pre-populated from an existing
// transaction (edit mode).
func (h *DraftHandler) Create(c echo.Context) error {
	var req createDraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ReservationID == "" && req.TransactionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reservationId or transactionId is required")
	}

	draft, err := h.drafts.Create(c.Request().Context(), getStringFromContext(c, "userUID"), req.ReservationID, req.TransactionID)
	if err != nil {
		return err
	}

	view, err := h.drafts.View(c.Request().Context(), draft)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

func (h *DraftHandler) load(c echo.Context) (*models.DraftSession, error) {
	return h.drafts.Get(c.Param("id"), getStringFromContext(c, "userUID"))
}

// Get returns the draft with its catalog and computed totals.
func (h *DraftHandler) Get(c echo.Context) error {
	draft, err := h.load(c)
	if err != nil {
		return err
	}
	view, err := h.drafts.View(c.Request().Context(), draft)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Toggle flips one quota in the selection set.
func (h *DraftHandler) Toggle(c echo.Context) error {
	draft, err := h.load(c)
	if err != nil {
		return err
	}
	view, err := h.drafts.Toggle(c.Request().Context(), draft, c.Param("quotaId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Clear empties the selection set.
func (h *DraftHandler) Clear(c echo.Context) error {
	draft, err := h.load(c)
	if err != nil {
		return err
	}
	view, err := h.drafts.ClearSelection(c.Request().Context(), draft)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// MatchTotal copies the selection total into the amount field. Explicit
// user action; selection changes never overwrite the amount on their own.
func (h *DraftHandler) MatchTotal(c echo.Context) error {
	draft, err := h.load(c)
	if err != nil {
		return err
	}
	view, err := h.drafts.MatchTotal(c.Request().Context(), draft)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Update applies a partial field edit to the draft.
func (h *DraftHandler) Update(c echo.Context) error {
	draft, err := h.load(c)
	if err != nil {
		return err
	}
	var patch services.DraftPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	view, err := h.drafts.UpdateFields(c.Request().Context(), draft, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// UploadReceipt attaches the receipt image (comprobante) to the draft.
func (h *DraftHandler) UploadReceipt(c echo.Context) error {
	draft, err := h.load(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("comprobanteFile")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "comprobanteFile is required")
	}
	if file.Size > maxReceiptBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "receipt image is too large")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxReceiptBytes))
	if err != nil {
		return err
	}

	if err := h.drafts.AttachReceipt(draft, data, file.Filename); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Submit runs the gate: client-side validation, amount-match, staleness
// check, then the core API mutation. On success the draft closes and read
// caches are invalidated.
func (h *DraftHandler) Submit(c echo.Context) error {
	draft, err := h.load(c)
	if err != nil {
		return err
	}

	// The snapshot the selection was made against; served from cache.
	snapshot, _, err := h.catalogs.Load(c.Request().Context(), draft.ReservationID, draft.TransactionID, false)
	if err != nil {
		return err
	}

	result, err := h.submission.Submit(c.Request().Context(), draft, snapshot)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Cancel discards the draft session.
func (h *DraftHandler) Cancel(c echo.Context) error {
	draft, err := h.load(c)
	if err != nil {
		return err
	}
	if err := h.drafts.Cancel(draft); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
