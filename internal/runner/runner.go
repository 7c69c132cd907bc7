package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"

	"olp/compat/internal/compat"
	"olp/compat/internal/monitor"
	"olp/compat/internal/source"
	"olp/compat/pkg/logger"
)

// CheckResult 单个检查项的执行结果
type CheckResult struct {
	Name     string
	OK       bool
	Details  string
	Duration time.Duration
}

// Report 回归执行汇总
type Report struct {
	Results []CheckResult
	Passed  int
	Failed  int
}

// Runner 回归检查执行器, 对数据源逐项校验转换语义
type Runner struct {
	provider    source.Provider
	transformer *compat.Transformer
	log         logger.Logger
	concurrency int

	passed atomic.Int64
	failed atomic.Int64
}

func New(provider source.Provider, transformer *compat.Transformer, log logger.Logger, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		provider:    provider,
		transformer: transformer,
		log:         log,
		concurrency: concurrency,
	}
}

type check struct {
	name string
	fn   func(ctx context.Context) (string, error)
}

// Run 执行全部检查项, filter 非空时按名称子串过滤
func (r *Runner) Run(ctx context.Context, filter string) *Report {
	checks := r.checks()
	selected := make([]check, 0, len(checks))
	for _, c := range checks {
		if filter == "" || strings.Contains(c.name, filter) {
			selected = append(selected, c)
		}
	}

	results := make([]CheckResult, len(selected))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.runOne(ctx, selected[idx])
			}
		}()
	}
	for i := range selected {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	report := &Report{Results: results}
	report.Passed = int(r.passed.Load())
	report.Failed = int(r.failed.Load())
	return report
}

func (r *Runner) runOne(ctx context.Context, c check) CheckResult {
	ctx = context.WithValue(ctx, "check", c.name)
	start := time.Now()
	details, err := c.fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		r.failed.Inc()
		r.log.Errorf(ctx, "check %s failed: %v", c.name, err)
		return CheckResult{Name: c.name, OK: false, Details: err.Error(), Duration: elapsed}
	}
	r.passed.Inc()
	return CheckResult{Name: c.name, OK: true, Details: details, Duration: elapsed}
}

func (r *Runner) fetchDoc(ctx context.Context, path, caseID string) (int, map[string]interface{}, error) {
	return r.provider.Fetch(ctx, "GET", path, map[string]string{"case": caseID})
}

func (r *Runner) transformCase(ctx context.Context, path, caseID string) (*compat.LegacyOrder, *compat.AuditTrail, error) {
	status, body, err := r.fetchDoc(ctx, path, caseID)
	if err != nil {
		return nil, nil, err
	}
	if status != 200 {
		return nil, nil, fmt.Errorf("case %s: unexpected status %d", caseID, status)
	}
	return r.transformer.ToLegacy(ctx, body)
}

func (r *Runner) checks() []check {
	return []check{
		{"legacy_shape_complete", r.checkLegacyShape},
		{"price_mismatch_repaired", r.checkPriceMismatch},
		{"timezone_collapsed_to_date", r.checkTimezone},
		{"fulfilled_with_tracking_physical", r.checkFulfilledPhysical},
		{"fulfilled_without_tracking_digital", r.checkFulfilledDigital},
		{"jpy_declared_vs_items", r.checkCurrencyEdge},
		{"v3_envelope_unwrapped", r.checkEnvelopeUnwrap},
		{"v3_explicit_items_win", r.checkExplicitItems},
		{"unknown_state_defaults_paid", r.checkUnknownState},
		{"unknown_currency_fallback", r.checkUnknownCurrency},
		{"bad_date_sentinel", r.checkBadDate},
		{"empty_payload_rejected", r.checkEmptyPayload},
		{"passthrough_idempotent", r.checkIdempotency},
		{"deprecated_endpoint_classified", r.checkDeprecated},
		{"transient_error_classified", r.checkTransient},
		{"structured_error_normalized", r.checkErrorNormalization},
		{"transform_latency", r.checkLatency},
	}
}

func (r *Runner) checkLegacyShape(ctx context.Context) (string, error) {
	order, _, err := r.transformCase(ctx, "/api/v2/orders", "v2_good")
	if err != nil {
		return "", err
	}
	if order.OrderID != "v2-100" || order.Status != compat.StatusPaid {
		return "", fmt.Errorf("unexpected header fields: %s/%s", order.OrderID, order.Status)
	}
	if got := fmt.Sprintf("%.2f", order.TotalPrice); got != "30.00" {
		return "", fmt.Errorf("totalPrice = %s, want 30.00", got)
	}
	if order.CustomerID != "c-1" || order.CustomerName != "Alice" {
		return "", fmt.Errorf("customer fields missing")
	}
	if order.CreatedAt != "2025-12-10" {
		return "", fmt.Errorf("createdAt = %s, want 2025-12-10", order.CreatedAt)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 3 {
		return "", fmt.Errorf("items not carried over")
	}
	return "all legacy fields populated", nil
}

func (r *Runner) checkPriceMismatch(ctx context.Context) (string, error) {
	order, audit, err := r.transformCase(ctx, "/api/v2/orders", "v2_price_mismatch")
	if err != nil {
		return "", err
	}
	if got := fmt.Sprintf("%.2f", order.TotalPrice); got != "40.00" {
		return "", fmt.Errorf("totalPrice = %s, want calculated 40.00", got)
	}
	if !warningsContain(audit, "mismatch") {
		return "", fmt.Errorf("expected price mismatch warning, got %v", audit.Warnings)
	}
	d, ok := audit.FindDecision("price_consistency")
	if !ok || d.Action != "use_computed" {
		return "", fmt.Errorf("price_consistency decision = %+v", d)
	}
	return "calculated total won over declared", nil
}

func (r *Runner) checkTimezone(ctx context.Context) (string, error) {
	order, _, err := r.transformCase(ctx, "/api/v2/orders", "v2_price_mismatch")
	if err != nil {
		return "", err
	}
	// +02:00 当地时间换算到 UTC 后仍为同一天
	if order.CreatedAt != "2023-07-01" {
		return "", fmt.Errorf("createdAt = %s, want 2023-07-01", order.CreatedAt)
	}
	return "offset timestamp collapsed to UTC date", nil
}

func (r *Runner) checkFulfilledPhysical(ctx context.Context) (string, error) {
	order, audit, err := r.transformCase(ctx, "/api/v3/orders", "v3_fulfilled_tracking")
	if err != nil {
		return "", err
	}
	if order.Status != compat.StatusShipped {
		return "", fmt.Errorf("status = %s, want SHIPPED", order.Status)
	}
	d, ok := audit.FindDecision("status_mapping")
	if !ok || d.Detail["context"] != "physical" {
		return "", fmt.Errorf("status_mapping decision = %+v", d)
	}
	if got := fmt.Sprintf("%.2f", order.TotalPrice); got != "12.10" {
		return "", fmt.Errorf("totalPrice = %s, want 12.10 (11 EUR)", got)
	}
	return "tracking present, mapped as physical fulfillment", nil
}

func (r *Runner) checkFulfilledDigital(ctx context.Context) (string, error) {
	order, audit, err := r.transformCase(ctx, "/api/v3/orders", "v3_fulfilled_no_tracking")
	if err != nil {
		return "", err
	}
	if order.Status != compat.StatusShipped {
		return "", fmt.Errorf("status = %s, want SHIPPED", order.Status)
	}
	d, ok := audit.FindDecision("status_mapping")
	if !ok || d.Detail["context"] != "digital" {
		return "", fmt.Errorf("status_mapping decision = %+v", d)
	}
	// -07:00 的深夜时间戳换算到 UTC 落入次日
	if order.CreatedAt != "2023-06-02" {
		return "", fmt.Errorf("createdAt = %s, want 2023-06-02", order.CreatedAt)
	}
	return "no tracking signal, mapped as digital fulfillment", nil
}

func (r *Runner) checkCurrencyEdge(ctx context.Context) (string, error) {
	order, audit, err := r.transformCase(ctx, "/api/v2/orders", "v2_currency_edge")
	if err != nil {
		return "", err
	}
	if got := fmt.Sprintf("%.2f", order.TotalPrice); got != "35.00" {
		return "", fmt.Errorf("totalPrice = %s, want 35.00 (5000 JPY item)", got)
	}
	if !warningsContain(audit, "mismatch") {
		return "", fmt.Errorf("expected mismatch warning for declared 10000 JPY")
	}
	return "item-derived JPY total preferred over declared", nil
}

func (r *Runner) checkEnvelopeUnwrap(ctx context.Context) (string, error) {
	order, _, err := r.transformCase(ctx, "/api/v3/orders", "v3_multi_currency")
	if err != nil {
		return "", err
	}
	if order.OrderID != "v3-777" {
		return "", fmt.Errorf("orderId = %s, want v3-777", order.OrderID)
	}
	if got := fmt.Sprintf("%.2f", order.TotalPrice); got != "132.00" {
		return "", fmt.Errorf("totalPrice = %s, want 132.00 (120 EUR)", got)
	}
	return "first record extracted from data envelope", nil
}

func (r *Runner) checkExplicitItems(ctx context.Context) (string, error) {
	order, audit, err := r.transformCase(ctx, "/api/v3/orders", "v3_explicit_items")
	if err != nil {
		return "", err
	}
	d, ok := audit.FindDecision("line_items")
	if !ok || d.Action != "explicit" {
		return "", fmt.Errorf("line_items decision = %+v", d)
	}
	// 5 x 30.00 = 150.00, 与声明的 132.00 不一致, 取计算值
	if got := fmt.Sprintf("%.2f", order.TotalPrice); got != "150.00" {
		return "", fmt.Errorf("totalPrice = %s, want 150.00", got)
	}
	sm, ok := audit.FindDecision("status_mapping")
	if !ok || sm.Detail["context"] != "physical" {
		return "", fmt.Errorf("shipment tracking not treated as physical")
	}
	return "explicit line items won over pricing components", nil
}

func (r *Runner) checkUnknownState(ctx context.Context) (string, error) {
	order, audit, err := r.transformCase(ctx, "/api/v2/orders", "v2_unknown_state")
	if err != nil {
		return "", err
	}
	if order.Status != compat.StatusPaid {
		return "", fmt.Errorf("status = %s, want PAID default", order.Status)
	}
	if !warningsContain(audit, "Unknown status") {
		return "", fmt.Errorf("expected unknown status warning, got %v", audit.Warnings)
	}
	return "unknown state degraded to PAID with warning", nil
}

func (r *Runner) checkUnknownCurrency(ctx context.Context) (string, error) {
	doc := map[string]interface{}{
		"orderId": "v2-xcur",
		"state":   "PAID",
		"amount":  map[string]interface{}{"value": 42.0, "currency": "XCD"},
		"customer": map[string]interface{}{
			"id": "c-x", "name": "Xena",
		},
		"createdAt": "2024-01-01T00:00:00Z",
	}
	order, audit, err := r.transformer.ToLegacy(ctx, doc)
	if err != nil {
		return "", err
	}
	if got := fmt.Sprintf("%.2f", order.TotalPrice); got != "42.00" {
		return "", fmt.Errorf("totalPrice = %s, want 1:1 fallback 42.00", got)
	}
	if !warningsContain(audit, "Unknown currency") {
		return "", fmt.Errorf("expected unknown currency warning, got %v", audit.Warnings)
	}
	return "unknown currency handled with 1:1 fallback", nil
}

func (r *Runner) checkBadDate(ctx context.Context) (string, error) {
	order, audit, err := r.transformCase(ctx, "/api/v2/orders", "v2_bad_date")
	if err != nil {
		return "", err
	}
	if order.CreatedAt != compat.DateUnknown {
		return "", fmt.Errorf("createdAt = %s, want %s", order.CreatedAt, compat.DateUnknown)
	}
	if !audit.HasWarnings() {
		return "", fmt.Errorf("expected date warning")
	}
	return "unparseable date degraded to sentinel", nil
}

func (r *Runner) checkEmptyPayload(ctx context.Context) (string, error) {
	status, body, err := r.fetchDoc(ctx, "/api/v3/orders", "v3_empty_data")
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("unexpected status %d", status)
	}
	if _, _, err := r.transformer.ToLegacy(ctx, body); err == nil {
		return "", fmt.Errorf("expected empty payload error, got nil")
	}
	return "empty data envelope rejected", nil
}

func (r *Runner) checkIdempotency(ctx context.Context) (string, error) {
	status, body, err := r.fetchDoc(ctx, "/api/v1/orders", "v1_passthrough")
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("unexpected status %d", status)
	}
	_, audit, err := r.transformer.ToLegacy(ctx, body)
	if err != nil {
		return "", err
	}
	if _, ok := audit.FindDecision("noop"); !ok {
		return "", fmt.Errorf("expected noop decision for legacy input")
	}
	ok, err := r.transformer.ValidateIdempotency(ctx, body)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("second transform produced different output")
	}
	return "legacy input stable under repeated transform", nil
}

func (r *Runner) checkDeprecated(ctx context.Context) (string, error) {
	status, body, err := r.fetchDoc(ctx, "/api/v1/orders", "v1_deprecated")
	if err != nil {
		return "", err
	}
	if cls := monitor.Classify(status, body); cls != monitor.ClassDeprecated {
		return "", fmt.Errorf("class = %s, want DEPRECATED", cls)
	}
	return "410 endpoint classified as DEPRECATED", nil
}

func (r *Runner) checkTransient(ctx context.Context) (string, error) {
	status, body, err := r.fetchDoc(ctx, "/api/v3/orders", "v3_error_retryable")
	if err != nil {
		return "", err
	}
	cls := monitor.Classify(status, body)
	if cls != monitor.ClassTransient {
		return "", fmt.Errorf("class = %s, want TRANSIENT", cls)
	}
	if !cls.Retryable() {
		return "", fmt.Errorf("TRANSIENT should be retryable")
	}
	return "503 classified as retryable TRANSIENT", nil
}

func (r *Runner) checkErrorNormalization(ctx context.Context) (string, error) {
	status, body, err := r.fetchDoc(ctx, "/api/v3/orders", "v3_error_structured")
	if err != nil {
		return "", err
	}
	info := monitor.NormalizeError(status, body)
	if info.Error != "E1001" {
		return "", fmt.Errorf("error code = %s, want E1001", info.Error)
	}
	if !strings.Contains(info.Message, "invalid amount") {
		return "", fmt.Errorf("message = %q, missing detail", info.Message)
	}
	return "structured errors list normalized to flat envelope", nil
}

func (r *Runner) checkLatency(ctx context.Context) (string, error) {
	status, body, err := r.fetchDoc(ctx, "/api/v2/orders", "v2_good")
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("unexpected status %d", status)
	}
	avg, err := r.transformer.BenchmarkTransform(ctx, body, 200)
	if err != nil {
		return "", err
	}
	if avg > 5*time.Millisecond {
		return "", fmt.Errorf("avg transform took %s, want under 5ms", avg)
	}
	return fmt.Sprintf("avg transform %s over 200 runs", avg), nil
}

func warningsContain(audit *compat.AuditTrail, substr string) bool {
	for _, w := range audit.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
