package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"smartbiz/internal/app"
	"smartbiz/internal/core/entity"
	"smartbiz/internal/core/id"
	"smartbiz/internal/core/types"
	"smartbiz/internal/domain/catalog"
	"smartbiz/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo catalog",
	Long: `Load demo warehouses, products and partners. Ids are derived from the
codes, so running seed again updates the same rows.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// seedID is stable across runs and backends.
func seedID(code string) id.ID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("smartbiz/seed/"+code))
}

func seedCatalog(code, name string) entity.Catalog {
	return entity.Catalog{BaseEntity: entity.BaseEntity{ID: seedID(code)}, Code: code, Name: name}
}

func runSeed(cmd *cobra.Command, args []string) error {
	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	n, err := seed(cmd.Context(), b.Catalog)
	if err != nil {
		return err
	}
	cmd.Printf("seeded %d catalog entries\n", n)
	return nil
}

func seed(ctx context.Context, store app.CatalogStore) (int, error) {
	warehouses := []catalog.Warehouse{
		{Catalog: seedCatalog("WH-MAIN", "Main warehouse"), IsActive: true},
		{Catalog: seedCatalog("WH-SHOP", "Shop floor"), IsActive: true, AllowNegativeStock: true},
	}
	products := []catalog.Product{
		{Catalog: seedCatalog("CHAIR", "Office chair"), Type: catalog.TypeGoods, Unit: "pcs", Price: types.MustMoney("120"), Cost: types.MustMoney("70")},
		{Catalog: seedCatalog("DESK", "Standing desk"), Type: catalog.TypeGoods, Unit: "pcs", Price: types.MustMoney("450"), Cost: types.MustMoney("260")},
		{Catalog: seedCatalog("WOOD", "Oak board"), Type: catalog.TypeMaterial, Unit: "m", Price: types.MustMoney("18.5"), Cost: types.MustMoney("9.75")},
		{Catalog: seedCatalog("ASSEMBLY", "Assembly service"), Type: catalog.TypeService, Price: types.MustMoney("35")},
	}
	partners := []catalog.Partner{
		{Catalog: seedCatalog("C-ACME", "Acme Office"), Role: catalog.RoleClient, Email: "buyer@acme.example"},
		{Catalog: seedCatalog("S-NORD", "Nord Furniture"), Role: catalog.RoleSupplier, Email: "sales@nord.example"},
		{Catalog: seedCatalog("B-MIXT", "Mixt Trading"), Role: catalog.RoleBoth},
	}

	count := 0
	for _, w := range warehouses {
		if _, err := store.PutWarehouse(ctx, w); err != nil {
			return count, fmt.Errorf("warehouse %s: %w", w.Code, err)
		}
		count++
	}
	for _, p := range products {
		if _, err := store.PutProduct(ctx, p); err != nil {
			return count, fmt.Errorf("product %s: %w", p.Code, err)
		}
		count++
	}
	for _, p := range partners {
		if _, err := store.PutPartner(ctx, p); err != nil {
			return count, fmt.Errorf("partner %s: %w", p.Code, err)
		}
		count++
	}

	logger.Info(ctx, "demo catalog seeded", "warehouses", len(warehouses), "products", len(products), "partners", len(partners))
	return count, nil
}
