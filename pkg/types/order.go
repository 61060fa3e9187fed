package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidOrder is returned when an order or order item lacks required fields.
var ErrInvalidOrder = errors.New("invalid order")

const defaultOrderItemQuantity = 1

// OrderItem is a purchased item. Optional string fields are omitted from the payload when empty.
type OrderItem struct {
	ExternalProductID string
	Size              string
	SizeAlias         string
	VariantID         string
	ImageURL          string
	Color             string
	Gender            string
	UnitPrice         float64
	Currency          string
	// Quantity defaults to 1 when zero.
	Quantity int
	URL      string
}

// Validate reports missing required fields.
func (i OrderItem) Validate() error {
	var missing []string
	if strings.TrimSpace(i.ExternalProductID) == "" {
		missing = append(missing, "externalProductId")
	}
	if strings.TrimSpace(i.Size) == "" {
		missing = append(missing, "size")
	}
	if strings.TrimSpace(i.ImageURL) == "" {
		missing = append(missing, "imageUrl")
	}
	if strings.TrimSpace(i.Currency) == "" {
		missing = append(missing, "currency")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: item is missing %s", ErrInvalidOrder, strings.Join(missing, ", "))
	}
	if i.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidOrder)
	}
	return nil
}

// ToRequestParams returns the item payload.
func (i OrderItem) ToRequestParams() map[string]any {
	quantity := i.Quantity
	if quantity == 0 {
		quantity = defaultOrderItemQuantity
	}
	params := map[string]any{
		"externalProductId": i.ExternalProductID,
		"size":              i.Size,
		"imageUrl":          i.ImageURL,
		"unitPrice":         roundPrice(i.UnitPrice),
		"currency":          i.Currency,
		"quantity":          quantity,
	}
	putIfSet(params, "sizeAlias", i.SizeAlias)
	putIfSet(params, "variantId", i.VariantID)
	putIfSet(params, "color", i.Color)
	putIfSet(params, "gender", i.Gender)
	putIfSet(params, "url", i.URL)
	return params
}

// roundPrice rounds half away from zero to two decimals.
func roundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

func putIfSet(params map[string]any, key, value string) {
	if value != "" {
		params[key] = value
	}
}

// Order is an immutable order built by OrderBuilder.
type Order struct {
	externalOrderID string
	region          string
	items           []OrderItem
}

// ExternalOrderID returns the store's order id.
func (o Order) ExternalOrderID() string { return o.externalOrderID }

// Region returns the region and whether it was set.
func (o Order) Region() (string, bool) { return o.region, o.region != "" }

// Items returns a copy of the order items.
func (o Order) Items() []OrderItem {
	return append([]OrderItem(nil), o.items...)
}

// Builder returns a builder holding a copy of the order.
func (o Order) Builder() OrderBuilder {
	return OrderBuilder{
		externalOrderID: o.externalOrderID,
		region:          o.region,
		items:           append([]OrderItem(nil), o.items...),
	}
}

// Validate reports a missing order id or an invalid item.
func (o Order) Validate() error {
	if strings.TrimSpace(o.externalOrderID) == "" {
		return fmt.Errorf("%w: externalOrderId is required", ErrInvalidOrder)
	}
	for idx, item := range o.items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", idx, err)
		}
	}
	return nil
}

// ToRequestParams returns the order payload. items is always a list and region is only
// present when set.
func (o Order) ToRequestParams(apiKey, externalUserID string) map[string]any {
	items := make([]map[string]any, 0, len(o.items))
	for _, item := range o.items {
		items = append(items, item.ToRequestParams())
	}
	params := map[string]any{
		"apiKey":          apiKey,
		"externalOrderId": o.externalOrderID,
		"externalUserId":  externalUserID,
		"items":           items,
	}
	putIfSet(params, "region", o.region)
	return params
}

// OrderBuilder configures an Order. Every method returns a new builder and leaves the
// receiver and previously built orders untouched.
type OrderBuilder struct {
	externalOrderID string
	region          string
	items           []OrderItem
}

// NewOrderBuilder starts an order with the store's order id.
func NewOrderBuilder(externalOrderID string) OrderBuilder {
	return OrderBuilder{externalOrderID: externalOrderID}
}

// WithRegion sets the order region.
func (b OrderBuilder) WithRegion(region string) OrderBuilder {
	b.region = strings.TrimSpace(region)
	return b
}

// WithItems replaces the item list.
func (b OrderBuilder) WithItems(items ...OrderItem) OrderBuilder {
	b.items = append([]OrderItem(nil), items...)
	return b
}

// AddItem appends one item.
func (b OrderBuilder) AddItem(item OrderItem) OrderBuilder {
	items := make([]OrderItem, 0, len(b.items)+1)
	items = append(items, b.items...)
	b.items = append(items, item)
	return b
}

// Build returns the immutable order.
func (b OrderBuilder) Build() Order {
	return Order{
		externalOrderID: b.externalOrderID,
		region:          b.region,
		items:           append([]OrderItem(nil), b.items...),
	}
}

// OrderFromMap builds an order from a loosely typed map such as one decoded from a host
// bridge message. It uses the same keys as the request payload.
func OrderFromMap(m map[string]any) (Order, error) {
	id, _ := m["externalOrderId"].(string)
	if strings.TrimSpace(id) == "" {
		return Order{}, fmt.Errorf("%w: externalOrderId is required", ErrInvalidOrder)
	}
	b := NewOrderBuilder(id)
	if region, ok := m["region"].(string); ok {
		b = b.WithRegion(region)
	}
	rawItems, _ := m["items"].([]any)
	for idx, raw := range rawItems {
		im, ok := raw.(map[string]any)
		if !ok {
			return Order{}, fmt.Errorf("%w: item %d is not an object", ErrInvalidOrder, idx)
		}
		item, err := orderItemFromMap(im)
		if err != nil {
			return Order{}, fmt.Errorf("item %d: %w", idx, err)
		}
		b = b.AddItem(item)
	}
	order := b.Build()
	if err := order.Validate(); err != nil {
		return Order{}, err
	}
	return order, nil
}

func orderItemFromMap(m map[string]any) (OrderItem, error) {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	price, err := mapNumber(m, "unitPrice")
	if err != nil {
		return OrderItem{}, err
	}
	quantity, err := mapNumber(m, "quantity")
	if err != nil {
		return OrderItem{}, err
	}
	if quantity != math.Trunc(quantity) || quantity > math.MaxInt32 {
		return OrderItem{}, fmt.Errorf("%w: quantity %v is not a whole number", ErrInvalidOrder, quantity)
	}
	return OrderItem{
		ExternalProductID: str("externalProductId"),
		Size:              str("size"),
		SizeAlias:         str("sizeAlias"),
		VariantID:         str("variantId"),
		ImageURL:          str("imageUrl"),
		Color:             str("color"),
		Gender:            str("gender"),
		UnitPrice:         price,
		Currency:          str("currency"),
		Quantity:          int(quantity),
		URL:               str("url"),
	}, nil
}

// mapNumber reads a numeric value as produced by encoding/json (with or without UseNumber) or
// by YAML decoding. A missing key reads as 0.
func mapNumber(m map[string]any, key string) (float64, error) {
	switch v := m[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q is not a number", ErrInvalidOrder, key, v.String())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidOrder, key)
	}
}
