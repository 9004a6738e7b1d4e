package catalog

import "github.com/ppiankov/rainier/internal/model"

var builtin = []model.Category{
	{
		ID:          "VC",
		Name:        "Variable Consideration",
		Description: "VC flag:",
		Phrases: []string{
			"tier price", "price adjustment", "liquidated damage", "penalty",
			"credit", "discount", "refund", "bonus", "not to exceed",
			"price guarantee", "price protection", "cash", "no cost",
			"no additional charge",
		},
	},
	{
		ID:          "Performance_Acceptance",
		Name:        "Performance or Acceptance",
		Description: "Performance or Acceptance flag:",
		Phrases: []string{
			"acceptance criteria", "service level", "performance guarantee",
			"fan guarantee", "coverage ratio",
		},
	},
	{
		ID:          "Enforceability",
		Name:        "Enforceability",
		Description: "Enforceability flag:",
		Phrases: []string{
			"binding forecast", "cancel", "early termination",
			"termination for convenience", "nonrefundable", "non-refundable",
		},
	},
	{
		ID:          "Transfer",
		Name:        "Transfer",
		Description: "Transfer flag:",
		Phrases: []string{
			"FOB destination", "FOB shipping point", "title", "ownership",
			"risk of loss", "FOB origin", "shipment term", "shipping term",
			"bill and hold",
		},
	},
	{
		ID:          "MR",
		Name:        "Option, Material Right and Other Rights",
		Description: "Option, material right and other rights flag:",
		Phrases: []string{
			"option", "right to purchase", "to be determined", "TBD", "upgrade",
			"firmware update", "5G update", "regulatory approval",
			"state approval", "government approval", "agency approval",
			"council approval",
		},
	},
	{
		ID:          "Warranty",
		Name:        "Warranty",
		Description: "Warranty flag:",
		Phrases: []string{
			"warranty period", "extended warranty", "standard warranty",
			"third party warranty",
		},
	},
	{
		ID:          "Payment",
		Name:        "Payment Term",
		Description: "Payment Term flag:",
		Phrases:     []string{"payment", "invoice"},
	},
	{
		ID:          "Right_of_Return",
		Name:        "Right of Return, Rework or Repurchase",
		Description: "Right of Return, Rework or Repurchase flag:",
		Phrases: []string{
			"refund", "return", "rework", "re-work", "exchange", "Repurchase",
		},
	},
	{
		ID:          "License_Patent",
		Name:        "License, Patent or Access",
		Description: "License, patent or access flag:",
		Phrases: []string{
			"right to use", "license", "patent", "right to access",
		},
	},
	{
		ID:          "Principal_Agent",
		Name:        "Principal vs Agent",
		Description: "Principal vs Agent flag:",
		Phrases: []string{
			"agent", "principal", "third party", "subcontractor", "supplier",
			"vendor", "RACI",
		},
	},
	{
		ID:          "Related_Agreement",
		Name:        "Related Agreements",
		Description: "Related Agreements flag:",
		Phrases: []string{
			"side agreement", "vendor agreement", "vendor SOW",
			"installation agreement", "installation SOW",
			"subcontractor agreement", "subcontractor SOW", "loan document",
			"lease document", "financing document", "loan agreement",
			"lease agreement", "financing agreement", "csa",
			"customer specific addendum", "addendum",
		},
	},
	{
		ID:          "Retention_Bond",
		Name:        "Retention or Bond",
		Description: "Retention or Bond flag:",
		Phrases:     []string{"retention amount", "bond", "withhold"},
	},
	{
		ID:          "Other_Matters",
		Name:        "Other Matters",
		Description: "Other_Matters (e.g., expense, taxes, indemnification,contract terms, etc.) flag:",
		Phrases:     []string{"tax", "reimburse", "indemnify", "term of"},
	},
}
