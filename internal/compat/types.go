package compat

import "github.com/shopspring/decimal"

// Version 源文档版本
type Version string

const (
	VersionV1 Version = "v1" // 旧版格式（直通）
	VersionV2 Version = "v2" // 扁平结构
	VersionV3 Version = "v3" // data 数组包装结构
)

// v1 状态枚举（输出只允许这三个值）
const (
	StatusPaid      = "PAID"
	StatusCancelled = "CANCELLED"
	StatusShipped   = "SHIPPED"
)

// LegacyOrder v1 旧版订单（规范输出结构）
type LegacyOrder struct {
	OrderID      string       `json:"orderId"`
	Status       string       `json:"status"`
	TotalPrice   float64      `json:"totalPrice"`
	CustomerID   string       `json:"customerId"`
	CustomerName string       `json:"customerName"`
	CreatedAt    string       `json:"createdAt"`
	Items        []LegacyItem `json:"items"`
}

// LegacyItem v1 订单行项目（价格已折算为 USD）
type LegacyItem struct {
	SKU      string  `json:"sku"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// LineItem 源行项目（源货币），转换时逐行折算后按数量加权
type LineItem struct {
	SKU      string
	Quantity int
	Currency string
	Price    decimal.Decimal // 源货币单价
	PriceUSD decimal.Decimal // 折算后的 USD 单价（2 位小数）
}
