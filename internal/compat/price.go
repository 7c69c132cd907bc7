package compat

import "github.com/shopspring/decimal"

// Reconciler 价格对账器
// 比较声明总额与行项目合计（均为 USD），超出容差时信任行项目合计：
// 声明头可能是上游陈旧数据，逐行金额才是资金事实。该方向不可倒置。
type Reconciler struct {
	conv      *Converter
	tolerance decimal.Decimal
}

// NewReconciler 创建对账器
func NewReconciler(conv *Converter, tolerance decimal.Decimal) *Reconciler {
	return &Reconciler{conv: conv, tolerance: tolerance}
}

// SumItems 计算行项目合计（USD）
// 规范口径：每行先折算单价并保留 2 位小数，再乘数量，求和后整体保留 2 位
func (r *Reconciler) SumItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		total = total.Add(item.PriceUSD.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total.Round(2)
}

// Choose 在声明总额与计算总额之间做出选择（两者均已折算为 USD）
// 容差内取声明值并记录 valid 决策；超出容差取计算值并记录决策 + 告警
func (r *Reconciler) Choose(declaredUSD, computedUSD decimal.Decimal, audit *AuditTrail) decimal.Decimal {
	diff := declaredUSD.Sub(computedUSD).Abs()
	if diff.GreaterThan(r.tolerance) {
		audit.AddWarning("Price mismatch: declared $%s, calculated $%s; using calculated total",
			declaredUSD.StringFixed(2), computedUSD.StringFixed(2))
		audit.AddDecisionDetail("price_consistency", "use_computed", map[string]string{
			"declared": declaredUSD.StringFixed(2),
			"computed": computedUSD.StringFixed(2),
		})
		return computedUSD
	}

	audit.AddDecision("price_consistency", "valid")
	return declaredUSD
}
