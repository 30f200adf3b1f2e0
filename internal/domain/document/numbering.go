package document

import (
	"smartbiz/internal/core/numerator"
)

var prefixes = map[Kind]string{
	{DomainSales, TypeEstimate}: "EST",
	{DomainSales, TypeOrder}:    "ORD",
	{DomainSales, TypeDelivery}: "DEL",
	{DomainSales, TypeInvoice}:  "INV",
	{DomainSales, TypeIssue}:    "ISS",
	{DomainSales, TypeReturn}:   "RET",

	{DomainPurchase, TypePurchaseRequest}: "PR",
	{DomainPurchase, TypeRFQ}:             "RFQ",
	{DomainPurchase, TypeOrder}:           "PO",
	{DomainPurchase, TypeDelivery}:        "GRN",
	{DomainPurchase, TypeInvoice}:         "PINV",
	{DomainPurchase, TypeReturn}:          "PRET",
}

// Prefix returns the number prefix of a kind.
func Prefix(kind Kind) string {
	return prefixes[kind]
}

// NumberConfig returns the numbering config of a kind. The counter key is
// "<domain>_<type>", so both domains can share a prefix without sharing a counter.
func NumberConfig(kind Kind) numerator.Config {
	cfg := numerator.DefaultConfig(Prefix(kind))
	cfg.Key = string(kind.Domain) + "_" + string(kind.Type)
	return cfg
}

// NumberOptions picks the strategy: invoices and returns are gap-free.
func NumberOptions(kind Kind) *numerator.Options {
	switch kind.Type {
	case TypeInvoice, TypeReturn:
		return &numerator.Options{Strategy: numerator.StrategyStrict}
	}
	return &numerator.Options{Strategy: numerator.StrategyCached, RangeSize: 20}
}
