// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package tiering defines the deal-flow tiering configuration: the ranked
// ownership types and countries, the per-tier employee count bounds, founding
// and fundraise year thresholds, and total raised limits.
//
// The JSON shape is fixed by the frontend and the stored documents:
//
//	{
//	  "country":         {"USA": 1, "Canada": null, ...},
//	  "Ownership":       {"Private": 2, ...},
//	  "FTE_Count":       {"tier_1": {"Private": {"max": 50, "min": 10}}, ...},
//	  "founding_year":   {"tier_1": "2015", ...},
//	  "fundraiser_year": {"tier_1": "2020", ...},
//	  "total_raised":    {"tier_1": {"private_equity": 500000, "Others": 100}, ...}
//	}
//
// Keys without input are null or omitted, never empty strings.
package tiering
