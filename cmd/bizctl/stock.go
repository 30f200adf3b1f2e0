package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"smartbiz/internal/core/id"
	"smartbiz/internal/domain/registers/stock"
	"smartbiz/pkg/logger"
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Stock register maintenance",
}

var stockRecalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Rebuild stock balances from the movement journal",
	Example: `  # everything
  bizctl stock recalc

  # one cell
  bizctl stock recalc --warehouse <uuid> --product <uuid>`,
	Args: cobra.NoArgs,
	RunE: runStockRecalc,
}

func init() {
	rootCmd.AddCommand(stockCmd)
	stockCmd.AddCommand(stockRecalcCmd)
	stockRecalcCmd.Flags().String("warehouse", "", "Only this warehouse")
	stockRecalcCmd.Flags().String("product", "", "Only this product")
}

func runStockRecalc(cmd *cobra.Command, args []string) error {
	warehouseID, err := optionalID(cmd, "warehouse")
	if err != nil {
		return err
	}
	productID, err := optionalID(cmd, "product")
	if err != nil {
		return err
	}

	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := stock.NewService(b.Stock).Recalculate(cmd.Context(), warehouseID, productID); err != nil {
		return err
	}

	logger.Info(cmd.Context(), "stock balances recalculated", "warehouse", warehouseID, "product", productID)
	cmd.Println("stock balances recalculated")
	return nil
}

func optionalID(cmd *cobra.Command, flag string) (*id.ID, error) {
	s, _ := cmd.Flags().GetString(flag)
	if s == "" {
		return nil, nil
	}
	v, err := id.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &v, nil
}
