package builtin

import (
	"fmt"

	"github.com/darmiel/verdict/internal/catalog"
	"github.com/darmiel/verdict/internal/core"
	"github.com/darmiel/verdict/internal/node"
	"github.com/darmiel/verdict/internal/rule"
)

// small helpers to keep the tree definitions readable

func call(name string, children ...node.Def) node.Def {
	return node.Def{Node: name, Children: children}
}

func callWith(name string, params node.Params, children ...node.Def) node.Def {
	return node.Def{Node: name, Params: params, Children: children}
}

func ref(path string) node.Def {
	return callWith(catalog.NodeVar, node.Params{"path": path})
}

func lit(value float64) node.Def {
	return callWith(catalog.NodeConst, node.Params{"value": value})
}

func clampTo(t core.SemanticType, child node.Def) node.Def {
	return callWith(catalog.NodeClamp, node.Params{"table": string(t)}, child)
}

// RuleDefs returns the definitions of all built-in rules.
func RuleDefs() []rule.Def {
	return []rule.Def{
		{
			ID:          catalog.RuleDecisionMomentum,
			Family:      catalog.FamilyDecision,
			Target:      string(core.Decision),
			Description: "RSI mean reversion confirmed by the MACD histogram",
			// 50 + 0.6 * (50 - rsi) +/- 15 depending on the MACD histogram sign
			Root: call(catalog.NodeToDecision,
				clampTo(core.Decision,
					call(catalog.NodeAdd,
						lit(50),
						call(catalog.NodeMul, lit(0.6), call(catalog.NodeSub, lit(50), ref(catalog.PathRSI14))),
						call(catalog.NodeIf,
							call(catalog.NodeGt, ref(catalog.PathMACDHistogram), lit(0)),
							lit(15),
							lit(-15),
						),
					),
				),
			),
		},
		{
			ID:          catalog.RuleDecisionValuation,
			Family:      catalog.FamilyDecision,
			Target:      string(core.Decision),
			Description: "P/E discount relative to the sector",
			// 50 + 50 * (sector_pe - pe) / sector_pe
			Root: call(catalog.NodeToDecision,
				clampTo(core.Decision,
					call(catalog.NodeAdd,
						lit(50),
						call(catalog.NodeMul,
							lit(50),
							call(catalog.NodeDiv,
								call(catalog.NodeSub, ref(catalog.PathSectorPERatio), ref(catalog.PathPERatio)),
								ref(catalog.PathSectorPERatio),
							),
						),
					),
				),
			),
		},
		{
			ID:          catalog.RuleRiskEnsemble,
			Family:      catalog.FamilyRisk,
			Target:      string(core.RiskLevel),
			Description: "weighted ensemble of the model risk estimators",
			Root: call(catalog.NodeToRiskLevel,
				clampTo(core.RiskLevel,
					callWith(catalog.NodeBlend, node.Params{"path": catalog.PathModels}),
				),
			),
		},
		{
			ID:          catalog.RuleRiskVolatility,
			Family:      catalog.FamilyRisk,
			Target:      string(core.RiskLevel),
			Description: "annualized volatility and maximum drawdown",
			Root: call(catalog.NodeToRiskLevel,
				clampTo(core.RiskLevel,
					callWith(catalog.NodeWeightedSum, node.Params{"weights": []any{0.6, 0.4}},
						call(catalog.NodeDiv, ref(catalog.PathVolatility30d), lit(0.8)),
						call(catalog.NodeAbs, ref(catalog.PathDrawdown)),
					),
				),
			),
		},
		{
			ID:          catalog.RuleOpportunityGrowth,
			Family:      catalog.FamilyOpportunity,
			Target:      string(core.OpportunityRating),
			Description: "revenue and earnings growth of profitable companies",
			Root: call(catalog.NodeToOpportunityRating,
				call(catalog.NodeIf,
					callWith(catalog.NodeFlag, node.Params{"path": catalog.PathProfitable}),
					clampTo(core.OpportunityRating,
						call(catalog.NodeMul,
							lit(200),
							call(catalog.NodeAvg, ref(catalog.PathRevenueGrowth), ref(catalog.PathEarningsGrowth)),
						),
					),
					lit(10),
				),
			),
		},
		{
			ID:          catalog.RuleOpportunityRebound,
			Family:      catalog.FamilyOpportunity,
			Target:      string(core.OpportunityRating),
			Description: "oversold stocks trading below their long-term average",
			Root: call(catalog.NodeToOpportunityRating,
				clampTo(core.OpportunityRating,
					callWith(catalog.NodeExpr, node.Params{
						"code": "(70 - technical.rsi_14) + (technical.price_vs_sma_200 < 0 ? 30 : 0)",
					}),
				),
			),
		},
	}
}

// Rules builds all built-in rules with reg.
func Rules(reg *node.Registry) ([]*rule.Rule, error) {
	defs := RuleDefs()
	out := make([]*rule.Rule, 0, len(defs))
	for _, def := range defs {
		r, err := rule.Build(reg, def)
		if err != nil {
			return nil, fmt.Errorf("building built-in rule '%s': %w", def.ID, err)
		}
		out = append(out, r)
	}
	return out, nil
}
