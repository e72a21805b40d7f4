package repository

import (
	"testing"

	"github.com/bookstall/internal/models"

	"github.com/shopspring/decimal"
)

func TestUpsertDailyOverwritesSameDay(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewReportRepository(db)

	first := &models.DailyReport{
		SellerID:      3,
		Date:          "2026-10-01",
		BooksSold:     models.BookEntries{{BookName: "Psalms", Quantity: 2}},
		HousesVisited: 4,
		WorkingHours:  decimal.NewFromFloat(3.5),
	}
	if err := repo.UpsertDaily(first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second := &models.DailyReport{
		SellerID:      3,
		Date:          "2026-10-01",
		BooksSold:     models.BookEntries{{BookName: "Psalms", Quantity: 5}},
		HousesVisited: 9,
		WorkingHours:  decimal.NewFromInt(6),
	}
	if err := repo.UpsertDaily(second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same row, got %d and %d", first.ID, second.ID)
	}

	var count int64
	db.Model(&models.DailyReport{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one daily report, got %d", count)
	}
	saved, _ := repo.GetDaily(3, "2026-10-01")
	if saved.HousesVisited != 9 || saved.TotalBooksSold() != 5 {
		t.Fatalf("expected overwritten values, got %+v", saved)
	}
}

func TestListDailyInRange(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewReportRepository(db)
	for _, date := range []string{"2026-09-30", "2026-10-01", "2026-10-31", "2026-11-01"} {
		if err := repo.UpsertDaily(&models.DailyReport{SellerID: 1, Date: date}); err != nil {
			t.Fatalf("upsert %s failed: %v", date, err)
		}
	}
	reports, err := repo.ListDailyInRange(1, "2026-10-01", "2026-10-31")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports in October, got %d", len(reports))
	}
}

func TestCreateMonthlyIfAbsent(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewReportRepository(db)

	created, err := repo.CreateMonthlyIfAbsent(&models.MonthlyReport{SellerID: 1, Month: 10, Year: 2026, TotalBooksSold: 4})
	if err != nil || !created {
		t.Fatalf("expected first create, created=%v err=%v", created, err)
	}
	created, err = repo.CreateMonthlyIfAbsent(&models.MonthlyReport{SellerID: 1, Month: 10, Year: 2026, TotalBooksSold: 99})
	if err != nil || created {
		t.Fatalf("expected conflict to be ignored, created=%v err=%v", created, err)
	}
	saved, _ := repo.GetMonthly(1, 10, 2026)
	if saved == nil || saved.TotalBooksSold != 4 {
		t.Fatalf("expected original monthly report to be kept, got %+v", saved)
	}
}
