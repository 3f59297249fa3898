// Package catalog is the shared namespace of node names, rule families and built-in rule ids.
// Every rule family registers into the same registry and rule set, so all names live here.
package catalog

// Rule families
const (
	FamilyDecision    = "decision"
	FamilyRisk        = "risk"
	FamilyOpportunity = "opportunity"
)

// Families returns the known rule families.
func Families() []string {
	return []string{FamilyDecision, FamilyRisk, FamilyOpportunity}
}

// terminals and constants
const (
	NodeVar      = "var"
	NodeFlag     = "flag"
	NodeConst    = "const"
	NodeBool     = "bool"
	NodeExpr     = "expr"
	NodeExprBool = "expr_bool"
	NodeBlend    = "blend"
)

// arithmetic
const (
	NodeAdd         = "add"
	NodeSub         = "sub"
	NodeMul         = "mul"
	NodeDiv         = "div"
	NodeNeg         = "neg"
	NodeAbs         = "abs"
	NodeMin         = "min"
	NodeMax         = "max"
	NodeAvg         = "avg"
	NodeClamp       = "clamp"
	NodeWeightedSum = "weighted_sum"
)

// comparison and logic
const (
	NodeGt  = "gt"
	NodeGte = "gte"
	NodeLt  = "lt"
	NodeLte = "lte"
	NodeEq  = "eq"
	NodeAnd = "and"
	NodeOr  = "or"
	NodeNot = "not"
	NodeIf  = "if"
)

// root operators
const (
	NodeToDecision          = "to_decision"
	NodeToRiskLevel         = "to_risk_level"
	NodeToOpportunityRating = "to_opportunity_rating"
)

// built-in rule ids, prefixed with their family
const (
	RuleDecisionMomentum   = "decision.momentum"
	RuleDecisionValuation  = "decision.valuation"
	RuleRiskEnsemble       = "risk.ensemble"
	RuleRiskVolatility     = "risk.volatility"
	RuleOpportunityGrowth  = "opportunity.growth"
	RuleOpportunityRebound = "opportunity.rebound"
)

// well-known context paths read by the built-in rules
const (
	PathRSI14          = "technical.rsi_14"
	PathMACDHistogram  = "technical.macd_histogram"
	PathPriceVsSMA200  = "technical.price_vs_sma_200"
	PathVolatility30d  = "technical.volatility_30d"
	PathDrawdown       = "technical.max_drawdown"
	PathPERatio        = "fundamental.pe_ratio"
	PathSectorPERatio  = "fundamental.sector_pe_ratio"
	PathRevenueGrowth  = "fundamental.revenue_growth"
	PathEarningsGrowth = "fundamental.earnings_growth"
	PathProfitable     = "fundamental.profitable"
	PathModels         = "models"
)

// estimator names of the risk ensemble, read from PathModels
const (
	EstimatorLGBM = "lgbm_score"
	EstimatorRF   = "rf_score"
	EstimatorMI   = "mi_score"
)
