package types

import (
	"strconv"
	"strings"
)

const measurementBust = "bust"

// BodyProfileRecommendedSizeParams is the request body for a body profile size recommendation.
type BodyProfileRecommendedSizeParams struct {
	productTypes []ProductType
	storeProduct Product
	bodyProfile  UserBodyProfile
}

// NewBodyProfileRecommendedSizeParams copies its inputs so later changes by the caller do not
// leak into the payload.
func NewBodyProfileRecommendedSizeParams(
	productTypes []ProductType,
	storeProduct Product,
	bodyProfile UserBodyProfile,
) BodyProfileRecommendedSizeParams {
	return BodyProfileRecommendedSizeParams{
		productTypes: append([]ProductType(nil), productTypes...),
		storeProduct: storeProduct,
		bodyProfile:  bodyProfile,
	}
}

// ToRequestParams returns the payload. userWeight is only present when the profile weight
// parses as a number.
func (p BodyProfileRecommendedSizeParams) ToRequestParams() map[string]any {
	params := map[string]any{
		"bodyData":   p.bodyDataParams(),
		"userGender": p.bodyProfile.Gender,
		"userHeight": p.bodyProfile.Height,
		"items":      []map[string]any{p.itemParams()},
	}
	if w, err := strconv.ParseFloat(strings.TrimSpace(p.bodyProfile.Weight), 64); err == nil {
		params["userWeight"] = w
	}
	return params
}

func (p BodyProfileRecommendedSizeParams) bodyDataParams() map[string]any {
	out := make(map[string]any, len(p.bodyProfile.BodyData)+1)
	for _, m := range p.bodyProfile.BodyData {
		out[m.Name] = predictedMeasurement(m.Millimeter)
		if m.Name == measurementBust {
			out["chest"] = predictedMeasurement(m.Millimeter)
		}
	}
	return out
}

func predictedMeasurement(mm int) map[string]any {
	return map[string]any{"value": mm, "predicted": true}
}

func (p BodyProfileRecommendedSizeParams) itemParams() map[string]any {
	return map[string]any{
		"itemSizesOrig":  sizesParams(p.storeProduct.Sizes),
		"productType":    p.productTypeName(),
		"additionalInfo": p.additionalInfoParams(),
		"extProductId":   p.storeProduct.ExternalID,
	}
}

func (p BodyProfileRecommendedSizeParams) productTypeName() string {
	for _, pt := range p.productTypes {
		if pt.ID == p.storeProduct.ProductType {
			return pt.Name
		}
	}
	return ""
}

func (p BodyProfileRecommendedSizeParams) additionalInfoParams() map[string]any {
	var (
		brand     string
		fit       = FitRegular
		sizes     = map[string]map[string]int{}
		modelInfo map[string]any
	)
	if meta := p.storeProduct.StoreProductMeta; meta != nil {
		brand = meta.Brand
		if info := meta.AdditionalInfo; info != nil {
			if info.Brand != "" {
				brand = info.Brand
			}
			if info.Fit != "" {
				fit = info.Fit
			}
			sizes = sizesParams(info.Sizes)
			modelInfo = info.ModelInfo
		}
	}
	out := map[string]any{
		"brand":     brand,
		"fit":       fit,
		"sizes":     sizes,
		"modelInfo": nil,
		"gender":    p.bodyProfile.Gender,
	}
	if modelInfo != nil {
		out["modelInfo"] = modelInfo
	}
	return out
}

func sizesParams(sizes []ProductSize) map[string]map[string]int {
	out := make(map[string]map[string]int, len(sizes))
	for _, s := range sizes {
		out[s.Name] = s.MeasurementMap()
	}
	return out
}
