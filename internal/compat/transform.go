package compat

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// Transformer 旧版格式转换器（v2/v3 → v1）
// 无内部可变状态，单实例可被并发调用；每次 ToLegacy 产出独享的审计轨迹
type Transformer struct {
	conv *Converter
	rec  *Reconciler
}

// NewTransformer 创建转换器
func NewTransformer(conv *Converter, toleranceUSD decimal.Decimal) *Transformer {
	return &Transformer{
		conv: conv,
		rec:  NewReconciler(conv, toleranceUSD),
	}
}

// DefaultTransformer 使用内置汇率表和 0.01 美元容差创建转换器
func DefaultTransformer() *Transformer {
	return NewTransformer(DefaultConverter(), decimal.NewFromFloat(0.01))
}

// ToLegacy 将 v2/v3 源文档转换为 v1 旧版订单
// 三种终态：
//   - 成功：返回旧版订单 + 审计轨迹（warnings 为空）
//   - 带告警成功：同上，warnings 非空（对调用方仍是成功）
//   - 失败：返回 ErrUnknownVersion / ErrEmptyPayload，审计轨迹废弃
func (t *Transformer) ToLegacy(ctx context.Context, doc map[string]interface{}) (*LegacyOrder, *AuditTrail, error) {
	audit := NewAuditTrail()

	version, err := DetectVersion(doc)
	if err != nil {
		return nil, nil, err
	}
	audit.AddDecision("detect_version", string(version))

	// v1 直通：深拷贝原样返回，只追加 noop 决策
	if version == VersionV1 {
		out, err := passThrough(doc)
		if err != nil {
			return nil, nil, err
		}
		audit.AddDecision("noop", "already legacy format")
		return out, audit, nil
	}

	run := &transformRun{
		t:       t,
		doc:     doc,
		audit:   audit,
		version: version,
		out:     &LegacyOrder{Items: make([]LegacyItem, 0)},
	}

	pipe := NewPipeline([]ProcessorFunc{
		run.selectRecord,
		run.mapStatus,
		run.extractCustomer,
		run.reconcilePrice,
		run.normalizeDate,
		run.buildItems,
	})

	if err := pipe.Run(ctx); err != nil {
		return nil, nil, err
	}

	return run.out, audit, nil
}

// ValidateIdempotency 校验转换幂等性：输出再过一遍引擎应得到相同结果
func (t *Transformer) ValidateIdempotency(ctx context.Context, doc map[string]interface{}) (bool, error) {
	first, _, err := t.ToLegacy(ctx, doc)
	if err != nil {
		return false, err
	}

	raw, err := json.Marshal(first)
	if err != nil {
		return false, err
	}
	var redoc map[string]interface{}
	if err := json.Unmarshal(raw, &redoc); err != nil {
		return false, err
	}

	second, _, err := t.ToLegacy(ctx, redoc)
	if err != nil {
		return false, err
	}

	return reflect.DeepEqual(first, second), nil
}

// BenchmarkTransform 测量平均单次转换耗时
func (t *Transformer) BenchmarkTransform(ctx context.Context, doc map[string]interface{}, iterations int) (time.Duration, error) {
	if iterations <= 0 {
		iterations = 1000
	}
	start := time.Now()
	for i := 0; i < iterations; i++ {
		if _, _, err := t.ToLegacy(ctx, doc); err != nil {
			return 0, err
		}
	}
	return time.Since(start) / time.Duration(iterations), nil
}

// passThrough v1 文档深拷贝（经 JSON 往返，避免共享底层引用）
func passThrough(doc map[string]interface{}) (*LegacyOrder, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("legacy pass-through: %w", err)
	}
	var out LegacyOrder
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("legacy pass-through: %w", err)
	}
	if out.Items == nil {
		out.Items = make([]LegacyItem, 0)
	}
	return &out, nil
}

// transformRun 单次转换的中间状态（不跨调用复用）
type transformRun struct {
	t       *Transformer
	doc     map[string]interface{}
	audit   *AuditTrail
	version Version

	record      map[string]interface{}
	items       []LineItem
	itemsSource string
	totalUSD    decimal.Decimal
	out         *LegacyOrder
}

// selectRecord 选定工作记录
// v2 即文档本身；v3 取 data 数组首条（旧版客户端不做分页遍历）
func (r *transformRun) selectRecord(ctx context.Context) error {
	if r.version == VersionV2 {
		r.record = r.doc
	} else {
		data := asList(r.doc["data"])
		if len(data) == 0 {
			return fmt.Errorf("select record: %w", ErrEmptyPayload)
		}
		rec, ok := data[0].(map[string]interface{})
		if !ok {
			return fmt.Errorf("first data entry is not an object: %w", ErrEmptyPayload)
		}
		r.record = rec
	}

	r.out.OrderID = asString(r.record["orderId"])
	return nil
}

// mapStatus 状态映射（版本相关的源字段 + 跟踪信号）
func (r *transformRun) mapStatus(ctx context.Context) error {
	var state string
	if r.version == VersionV2 {
		state = asString(r.record["state"])
	} else {
		state = asString(asMap(r.record["orderStatus"])["current"])
	}

	r.out.Status = MapStatus(state, r.hasTracking(), r.audit)
	return nil
}

// hasTracking 判定跟踪信号
// v2 只看 trackingNumber；v3 还接受 shipment.trackingNumber
// 以及履约历史中带跟踪号的条目
func (r *transformRun) hasTracking() bool {
	if asString(r.record["trackingNumber"]) != "" {
		return true
	}
	if r.version == VersionV2 {
		return false
	}

	if asString(asMap(r.record["shipment"])["trackingNumber"]) != "" {
		return true
	}

	history := asList(asMap(r.record["orderStatus"])["history"])
	for _, raw := range history {
		entry := asMap(raw)
		if asString(entry["tracking"]) != "" || asString(entry["trackingNumber"]) != "" {
			return true
		}
	}
	return false
}

// extractCustomer 提取客户信息（缺失不报错，留空）
func (r *transformRun) extractCustomer(ctx context.Context) error {
	customer := asMap(r.record["customer"])
	r.out.CustomerID = asString(customer["id"])
	r.out.CustomerName = asString(customer["name"])
	return nil
}

// reconcilePrice 价格对账（版本相关的声明值与组件口径）
func (r *transformRun) reconcilePrice(ctx context.Context) error {
	if r.version == VersionV2 {
		return r.reconcileV2()
	}
	return r.reconcileV3()
}

// reconcileV2 v2 对账：amount{value,currency} vs lineItems 合计
func (r *transformRun) reconcileV2() error {
	amount := asMap(r.record["amount"])
	declared := asDecimal(amount["value"])
	currency := asString(amount["currency"])
	if currency == "" {
		currency = "USD"
	}
	if currency != "USD" {
		r.audit.AddDecision("currency_conversion", currency+"->USD")
	}
	declaredUSD := r.t.conv.ToUSD(declared, currency, r.audit)

	r.items = r.parseLineItems(asList(r.record["lineItems"]), "USD")
	if len(r.items) == 0 {
		r.itemsSource = "none"
		r.totalUSD = declaredUSD
		r.audit.AddDecision("price_consistency", "use_declared")
		return nil
	}

	r.itemsSource = "explicit"
	computed := r.t.rec.SumItems(r.items)
	r.totalUSD = r.t.rec.Choose(declaredUSD, computed, r.audit)
	return nil
}

// reconcileV3 v3 对账：pricing.total vs 组件口径
// 组件口径固定为：有显式 lineItems 用 lineItems，否则用
// subtotal+tax-discount；绝不伪造行项目
func (r *transformRun) reconcileV3() error {
	pricing := asMap(r.record["pricing"])
	declared := asDecimal(pricing["total"])
	currency := asString(pricing["currency"])
	if currency == "" {
		currency = "USD"
	}
	if currency != "USD" {
		r.audit.AddDecision("currency_conversion", currency+"->USD")
	}
	declaredUSD := r.t.conv.ToUSD(declared, currency, r.audit)

	// v3 显式行项目通常不带货币字段，缺省按定价货币口径折算
	r.items = r.parseLineItems(asList(r.record["lineItems"]), currency)
	if len(r.items) > 0 {
		r.itemsSource = "explicit"
		computed := r.t.rec.SumItems(r.items)
		r.totalUSD = r.t.rec.Choose(declaredUSD, computed, r.audit)
		return nil
	}

	r.itemsSource = "pricing_components"
	subtotal := asDecimal(pricing["subtotal"])
	tax := asDecimal(pricing["tax"])
	discount := asDecimal(pricing["discount"])
	if m := asMap(pricing["discount"]); m != nil {
		// 折扣可能是对象 {code, amount}
		discount = asDecimal(m["amount"])
	}
	computed := r.t.conv.ToUSD(subtotal.Add(tax).Sub(discount), currency, r.audit)
	r.totalUSD = r.t.rec.Choose(declaredUSD, computed, r.audit)
	return nil
}

// parseLineItems 解析行项目并逐行折算为 USD
// 单价字段兼容 price / unitPrice / pricing.unit 三种写法
func (r *transformRun) parseLineItems(raw []interface{}, defaultCurrency string) []LineItem {
	items := make([]LineItem, 0, len(raw))
	for _, v := range raw {
		m := asMap(v)
		if m == nil {
			r.audit.AddWarning("Invalid line item: %v", v)
			continue
		}

		priceRaw := m["price"]
		if priceRaw == nil {
			priceRaw = m["unitPrice"]
		}
		if priceRaw == nil {
			priceRaw = asMap(m["pricing"])["unit"]
		}

		quantity := asInt(m["quantity"], 1)
		if quantity < 1 {
			quantity = 1
		}

		currency := asString(m["currency"])
		if currency == "" {
			currency = defaultCurrency
		}

		sku := asString(m["sku"])
		if sku == "" {
			sku = asString(m["name"])
		}

		item := LineItem{
			SKU:      sku,
			Quantity: quantity,
			Currency: currency,
			Price:    asDecimal(priceRaw),
		}
		item.PriceUSD = r.t.conv.ToUSD(item.Price, currency, r.audit)
		items = append(items, item)
	}
	return items
}

// normalizeDate 日期归一化（解析失败降级为哨兵值，不中止转换）
func (r *transformRun) normalizeDate(ctx context.Context) error {
	var raw string
	if r.version == VersionV2 {
		raw = asString(r.record["createdAt"])
	} else {
		raw = asString(asMap(r.record["timestamps"])["created"])
	}

	if raw == "" {
		r.audit.AddWarning("Missing created timestamp")
		r.out.CreatedAt = DateUnknown
		return nil
	}

	date, err := NormalizeDate(raw)
	if err != nil {
		r.audit.AddWarning("Date parsing failed: %v", err)
		r.out.CreatedAt = DateUnknown
		return nil
	}

	r.out.CreatedAt = date
	return nil
}

// buildItems 组装输出行项目并落定总价
func (r *transformRun) buildItems(ctx context.Context) error {
	r.audit.AddDecision("line_items", r.itemsSource)

	out := make([]LegacyItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, LegacyItem{
			SKU:      item.SKU,
			Price:    item.PriceUSD.InexactFloat64(),
			Quantity: item.Quantity,
		})
	}
	r.out.Items = out
	r.out.TotalPrice = r.totalUSD.InexactFloat64()
	return nil
}
