package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stockroom/internal/auth"
	"stockroom/internal/models"
)

type seedUser struct {
	username, password, fullName, email, department string
	role                                            models.Role
}

var seedUsers = []seedUser{
	{"admin", "admin123", "System Administrator", "admin@example.com", "IT", models.RoleAdmin},
	{"manager", "manager123", "Ahmet Yılmaz", "ahmet@example.com", "Administration", models.RoleManager},
	{"user", "user123", "Ayşe Demir", "ayse@example.com", "Accounting", models.RoleUser},
}

func demoMaterials() []models.Material {
	mk := func(code, name string, cat models.Category, unit models.Unit, stock, min, max float64, loc, shelf, barcode, price string) models.Material {
		return models.Material{
			Code: code, Name: name, Category: cat, Unit: unit,
			Stock: stock, MinLevel: min, MaxLevel: max,
			Location: loc, Shelf: shelf, Barcode: &barcode,
			UnitPrice: decimal.RequireFromString(price),
		}
	}
	return []models.Material{
		mk("MAL001", "A4 Fotokopi Kağıdı", models.CategoryStationery, models.UnitPackage, 50, 10, 200, "Depo A", "A-1", "8690000000001", "45.00"),
		mk("MAL002", "Tükenmez Kalem (Mavi)", models.CategoryStationery, models.UnitPiece, 100, 20, 500, "Depo A", "A-2", "8690000000002", "5.50"),
		mk("MAL003", "Çok Amaçlı Temizleyici", models.CategoryCleaning, models.UnitLitre, 8, 5, 50, "Depo B", "B-1", "8690000000003", "35.00"),
		mk("MAL004", "Toner HP 26A", models.CategoryOfficeEquipment, models.UnitPiece, 3, 2, 10, "Depo C", "C-1", "8690000000004", "850.00"),
		mk("MAL005", "Kahve (Filtre)", models.CategoryKitchen, models.UnitPackage, 5, 3, 20, "Mutfak", "M-1", "8690000000005", "120.00"),
		mk("MAL006", "Plastik Bardak", models.CategoryKitchen, models.UnitPiece, 200, 50, 1000, "Mutfak", "M-2", "8690000000006", "0.50"),
		mk("MAL007", "Zımba Teli", models.CategoryStationery, models.UnitBox, 15, 5, 50, "Depo A", "A-3", "8690000000007", "12.00"),
		mk("MAL008", "Klasör (Geniş)", models.CategoryStationery, models.UnitPiece, 25, 10, 100, "Depo A", "A-4", "8690000000008", "28.00"),
	}
}

func demoSuppliers() []models.Supplier {
	return []models.Supplier{
		{Code: "TED001", Name: "ABC Kırtasiye A.Ş.", ContactPerson: "Mehmet Kaya", Phone: "0212 555 1234", Email: "satis@abckirtasiye.com", Address: "İstanbul", Category: string(models.CategoryStationery), Rating: 4.5, Active: true},
		{Code: "TED002", Name: "Temizlik Market Ltd.", ContactPerson: "Fatma Öz", Phone: "0212 555 5678", Email: "info@temizlikmarket.com", Address: "İstanbul", Category: string(models.CategoryCleaning), Rating: 4.0, Active: true},
		{Code: "TED003", Name: "Ofis Teknik", ContactPerson: "Ali Demir", Phone: "0216 444 3333", Email: "destek@ofisteknik.com", Address: "Ankara", Category: string(models.CategoryOfficeEquipment), Rating: 4.8, Notes: "Hızlı teslimat", Active: true},
	}
}

func demoBudgets(year int) []models.Budget {
	mk := func(cat models.Category, monthly, annual, used int64) models.Budget {
		a, u := decimal.NewFromInt(annual), decimal.NewFromInt(used)
		return models.Budget{Year: year, Category: string(cat), MonthlyLimit: decimal.NewFromInt(monthly), AnnualLimit: a, Used: u, Remaining: a.Sub(u)}
	}
	return []models.Budget{
		mk(models.CategoryStationery, 5000, 60000, 12500),
		mk(models.CategoryCleaning, 3000, 36000, 8400),
		mk(models.CategoryOfficeEquipment, 10000, 120000, 25500),
		mk(models.CategoryKitchen, 2000, 24000, 6000),
		mk(models.CategoryTechnical, 5000, 60000, 15000),
	}
}

var demoLocations = []models.Location{
	{Code: "LOK001", Name: "Ana Depo", Address: "İstanbul Merkez", Manager: "Ahmet Yılmaz", Phone: "0212 555 1234", Active: true},
	{Code: "LOK002", Name: "Şube Depo", Address: "Ankara", Manager: "Mehmet Kaya", Phone: "0312 444 5678", Active: true},
}

// Seed populates an empty database with the default accounts and, when
// demo is set, a small sample inventory. It reports whether anything was
// written.
func (s *Store) Seed(ctx context.Context, demo bool) (bool, error) {
	var seeded bool
	err := s.write(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Count(&n).Error; err != nil || n > 0 {
			return err
		}
		now := s.now()
		for _, su := range seedUsers {
			hash, err := auth.HashPassword(su.password)
			if err != nil {
				return err
			}
			u := models.User{
				Username: su.username, PasswordHash: hash, FullName: su.fullName, Email: su.email,
				Department: su.department, Role: su.role, Active: true, CreatedAt: now,
			}
			if err := tx.Create(&u).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", su.username, err)
			}
		}
		seeded = true
		if !demo {
			return nil
		}
		materials := demoMaterials()
		for i := range materials {
			materials[i].LastUpdated = now
			materials[i].LastCounted = now
		}
		suppliers := demoSuppliers()
		budgets := demoBudgets(now.Year())
		locations := append([]models.Location(nil), demoLocations...)
		for _, rows := range []any{&materials, &suppliers, &budgets, &locations} {
			if err := tx.Create(rows).Error; err != nil {
				return fmt.Errorf("seed demo data: %w", err)
			}
		}
		return nil
	})
	if err == nil && seeded {
		s.lg.Infow("database seeded", "demo", demo)
	}
	return seeded, err
}
