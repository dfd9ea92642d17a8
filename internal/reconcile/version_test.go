package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
)

func TestCatalogVersionIgnoresOrdering(t *testing.T) {
	a := models.Quota{ID: "a", AmountDue: decimal.NewFromInt(100)}
	b := models.Quota{ID: "b", AmountDue: decimal.NewFromInt(250)}

	v1 := CatalogVersion(models.QuotaStatus{PendingQuotas: []models.Quota{a, b}})
	v2 := CatalogVersion(models.QuotaStatus{PendingQuotas: []models.Quota{b, a}})

	if v1 != v2 {
		t.Errorf("version depends on quota order: %s vs %s", v1, v2)
	}
}

func TestCatalogVersionDetectsClaimedQuota(t *testing.T) {
	before := models.QuotaStatus{PendingQuotas: []models.Quota{
		{ID: "a", AmountDue: decimal.NewFromInt(100)},
		{ID: "b", AmountDue: decimal.NewFromInt(250)},
	}}
	// Another operator paid quota "a": it leaves the pending list.
	after := models.QuotaStatus{PendingQuotas: []models.Quota{
		{ID: "b", AmountDue: decimal.NewFromInt(250)},
	}}

	if CatalogVersion(before) == CatalogVersion(after) {
		t.Error("version did not change when a quota was claimed")
	}
}

func TestCatalogVersionDetectsPartialPayment(t *testing.T) {
	quota := models.Quota{ID: "a", AmountDue: decimal.NewFromInt(100)}
	before := CatalogVersion(models.QuotaStatus{PendingQuotas: []models.Quota{quota}})

	quota.AmountPaid = decimal.NewFromInt(40)
	quota.RemainingAmount = decimal.NewFromInt(60)
	after := CatalogVersion(models.QuotaStatus{PendingQuotas: []models.Quota{quota}})

	if before == after {
		t.Error("version did not change when a quota's remaining amount changed")
	}
}
