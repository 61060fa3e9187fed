package parser

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/virtusize/virtusize-go/pkg/types"
)

// TestParsersAreIdempotent checks that parsing the same body twice yields equal records.
func TestParsersAreIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("product check parse is idempotent", prop.ForAll(
		func(storeID int, typeName string, valid, tooltip bool) bool {
			body, err := json.Marshal(map[string]any{
				"productId": "p",
				"data": map[string]any{
					"storeId":         storeID,
					"productTypeName": typeName,
					"validProduct":    valid,
					"userData":        map[string]any{"should_see_ph_tooltip": tooltip},
				},
			})
			if err != nil {
				return false
			}
			first, err1 := ProductCheckBody()(body)
			second, err2 := ProductCheckBody()(body)
			if err1 != nil || err2 != nil {
				return false
			}
			return reflect.DeepEqual(first, second) &&
				first.Data.StoreID == storeID &&
				first.Data.ProductTypeName == typeName &&
				first.Data.UserData.ShouldSeePhTooltip == tooltip
		},
		gen.IntRange(0, 1<<30),
		gen.AlphaString(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestUserDataToleratesAnyFieldValue checks that user data never fails and only reads booleans.
func TestUserDataToleratesAnyFieldValue(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	values := gen.OneGenOf(
		gen.AlphaString(),
		gen.Int(),
		gen.Float64Range(-1, 1),
		gen.Bool(),
	)

	properties.Property("user data flags are booleans or false", prop.ForAll(
		func(v any) bool {
			body, err := json.Marshal(map[string]any{"should_see_ph_tooltip": v, "wardrobeHasP": v})
			if err != nil {
				return false
			}
			obj, err := DecodeObject(body)
			if err != nil {
				return false
			}
			got, ok := UserData.Parse(obj)
			if !ok {
				return false
			}
			want := v == true
			return got.ShouldSeePhTooltip == want && got.WardrobeHasP == want && !got.WardrobeActive
		},
		values,
	))

	properties.TestingRun(t)
}

// TestOrderParamsItemsAlwaysList checks the items key for any number of items.
func TestOrderParamsItemsAlwaysList(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("items length matches and region is absent", prop.ForAll(
		func(n int) bool {
			b := types.NewOrderBuilder("order")
			for i := 0; i < n; i++ {
				b = b.AddItem(types.OrderItem{ExternalProductID: "p", Size: "M", ImageURL: "u", Currency: "JPY"})
			}
			params := b.Build().ToRequestParams("key", "user")
			items, ok := params["items"].([]map[string]any)
			_, hasRegion := params["region"]
			return ok && len(items) == n && !hasRegion
		},
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
