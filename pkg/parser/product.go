package parser

import (
	"sort"
	"strings"

	"github.com/virtusize/virtusize-go/pkg/types"
)

// UserData parses the userData section of a product check. All flags default to false.
var UserData = Func[types.UserData](func(obj Object) (types.UserData, bool) {
	return types.UserData{
		ShouldSeePhTooltip: obj.Bool("should_see_ph_tooltip", false),
		WardrobeHasP:       obj.Bool("wardrobeHasP", false),
		WardrobeHasR:       obj.Bool("wardrobeHasR", false),
		WardrobeHasM:       obj.Bool("wardrobeHasM", false),
		WardrobeActive:     obj.Bool("wardrobeActive", false),
	}, true
})

// Data parses the data section of a product check.
var Data = Func[types.Data](func(obj Object) (types.Data, bool) {
	userData, _ := nested[types.UserData](obj, "userData", UserData)
	return types.Data{
		ValidProduct:    obj.Bool("validProduct", false),
		FetchMetaData:   obj.Bool("fetchMetaData", false),
		UserData:        userData,
		ProductDataID:   obj.Int("productDataId", 0),
		ProductTypeName: obj.String("productTypeName", ""),
		StoreName:       obj.String("storeName", ""),
		StoreID:         obj.Int("storeId", 0),
		ProductTypeID:   obj.Int("productTypeId", 0),
	}, true
})

// ProductCheck parses a product check response. A missing data section yields a nil Data.
var ProductCheck = Func[types.ProductCheck](func(obj Object) (types.ProductCheck, bool) {
	data, _ := nested[types.Data](obj, "data", Data)
	return types.ProductCheck{
		Data:      data,
		ProductID: obj.String("productId", ""),
		Name:      obj.String("name", ""),
	}, true
})

// ProductCheckBody decodes a product check body and keeps the raw JSON on the record.
func ProductCheckBody() Decoder[types.ProductCheck] {
	one := One[types.ProductCheck](ProductCheck)
	return func(body []byte) (types.ProductCheck, error) {
		pc, err := one(body)
		if err != nil {
			return types.ProductCheck{}, err
		}
		pc.RawJSON = string(body)
		return pc, nil
	}
}

// Store parses a store resource. A store without an id carries no data.
var Store = Func[types.Store](func(obj Object) (types.Store, bool) {
	id := obj.Int("id", 0)
	if id == 0 {
		return types.Store{}, false
	}
	var region *string
	if r, ok := obj.NonBlank("region"); ok {
		region = &r
	}
	return types.Store{
		ID:                id,
		SurveyLink:        obj.String("surveyLink", ""),
		Name:              obj.String("name", ""),
		ShortName:         obj.String("shortName", ""),
		LengthUnitID:      obj.Int("lengthUnitId", 0),
		APIKey:            obj.String("apiKey", ""),
		Created:           obj.String("created", ""),
		Updated:           obj.String("updated", ""),
		Disabled:          obj.Bool("disabled", false),
		TypeMapperEnabled: obj.Bool("typemapperEnabled", false),
		Region:            region,
	}, true
})

// ProductType parses a product type. Weights are keyed by label, so a repeated label keeps
// the last value, and they are returned sorted by label.
var ProductType = Func[types.ProductType](func(obj Object) (types.ProductType, bool) {
	weights := weightList(obj.FloatMap("weights"))
	id := obj.Int("id", 0)
	if id == 0 && len(weights) == 0 {
		return types.ProductType{}, false
	}
	return types.ProductType{
		ID:             id,
		Name:           obj.String("name", ""),
		Weights:        weights,
		CompatibleWith: obj.Ints("compatibleWith"),
	}, true
})

func weightList(m map[string]float64) []types.Weight {
	out := make([]types.Weight, 0, len(m))
	for k, v := range m {
		out = append(out, types.Weight{Factor: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Factor < out[j].Factor })
	return out
}

// BrandSizing parses a brand sizing section. A blank compare value carries no data.
var BrandSizing = Func[types.BrandSizing](func(obj Object) (types.BrandSizing, bool) {
	compare, ok := obj.NonBlank("compare")
	if !ok {
		return types.BrandSizing{}, false
	}
	return types.BrandSizing{
		Compare:   compare,
		ItemBrand: obj.Bool("itemBrand", false),
	}, true
})

// ProductMetaDataHints parses the product meta data hints response.
var ProductMetaDataHints = Func[types.ProductMetaDataHints](func(obj Object) (types.ProductMetaDataHints, bool) {
	return types.ProductMetaDataHints{
		APIKey:             obj.String("apiKey", ""),
		ImageURL:           obj.String("imageUrl", ""),
		CloudinaryPublicID: obj.String("cloudinaryPublicId", ""),
		ExternalProductID:  obj.String("externalProductId", ""),
	}, true
})

// ProductSize parses a size with its measurements. Non-integer measurements are skipped.
var ProductSize = Func[types.ProductSize](func(obj Object) (types.ProductSize, bool) {
	name := obj.String("name", "")
	measurements := measurementList(obj.IntMap("measurements"))
	if name == "" && len(measurements) == 0 {
		return types.ProductSize{}, false
	}
	return types.ProductSize{Name: name, Measurements: measurements}, true
})

func measurementList(m map[string]int) []types.Measurement {
	out := make([]types.Measurement, 0, len(m))
	for k, v := range m {
		out = append(out, types.Measurement{Name: k, Millimeter: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// StoreProductAdditionalInfo parses the additionalInfo section of a store product meta.
// A section without a fit and without brand sizing carries no data.
var StoreProductAdditionalInfo = Func[types.StoreProductAdditionalInfo](
	func(obj Object) (types.StoreProductAdditionalInfo, bool) {
		fit := obj.String("fit", "")
		brandSizing, _ := nested[types.BrandSizing](obj, "brandSizing", BrandSizing)
		if strings.TrimSpace(fit) == "" && brandSizing == nil {
			return types.StoreProductAdditionalInfo{}, false
		}
		var gender *string
		if g, ok := obj.OptString("gender"); ok {
			gender = &g
		}
		modelInfo, _ := obj.Map("modelInfo")
		return types.StoreProductAdditionalInfo{
			Brand:       obj.String("brand", ""),
			Gender:      gender,
			Sizes:       sizeMap(obj),
			ModelInfo:   modelInfo,
			Fit:         fit,
			Style:       obj.String("style", ""),
			BrandSizing: brandSizing,
		}, true
	},
)

// sizeMap reads a {"S": {"bust": 800}} style section into sizes sorted by name.
func sizeMap(obj Object) []types.ProductSize {
	sizes, ok := obj.Object("sizes")
	if !ok {
		return []types.ProductSize{}
	}
	out := make([]types.ProductSize, 0, len(sizes))
	for name := range sizes {
		out = append(out, types.ProductSize{
			Name:         name,
			Measurements: measurementList(sizes.IntMap(name)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// StoreProductMeta parses the storeProductMeta section. A meta without an id carries no data.
var StoreProductMeta = Func[types.StoreProductMeta](func(obj Object) (types.StoreProductMeta, bool) {
	id := obj.Int("id", 0)
	if id == 0 {
		return types.StoreProductMeta{}, false
	}
	info, _ := nested[types.StoreProductAdditionalInfo](obj, "additionalInfo", StoreProductAdditionalInfo)
	var gender *string
	if g, ok := obj.OptString("gender"); ok {
		gender = &g
	}
	return types.StoreProductMeta{
		ID:             id,
		AdditionalInfo: info,
		Brand:          obj.String("brand", ""),
		Gender:         gender,
	}, true
})

// product reads the fields shared by store and user products.
func product(obj Object) (types.Product, bool) {
	id := obj.Int("id", 0)
	productType := obj.Int("productType", 0)
	if id == 0 || productType == 0 {
		return types.Product{}, false
	}
	sizes := make([]types.ProductSize, 0)
	for _, s := range obj.Objects("sizes") {
		if size, ok := ProductSize.Parse(s); ok {
			sizes = append(sizes, size)
		}
	}
	return types.Product{
		ID:                 id,
		Sizes:              sizes,
		ProductType:        productType,
		Name:               obj.String("name", ""),
		CloudinaryPublicID: obj.String("cloudinaryPublicId", ""),
		StoreID:            obj.Int("store", 0),
	}, true
}

// StoreProduct parses a store product. A product without an externalId carries no data.
var StoreProduct = Func[types.Product](func(obj Object) (types.Product, bool) {
	p, ok := product(obj)
	if !ok {
		return types.Product{}, false
	}
	externalID, ok := obj.NonBlank("externalId")
	if !ok {
		return types.Product{}, false
	}
	p.ExternalID = externalID
	p.StoreProductMeta, _ = nested[types.StoreProductMeta](obj, "storeProductMeta", StoreProductMeta)
	return p, true
})

// UserProduct parses a product from the user's wardrobe.
var UserProduct = Func[types.Product](func(obj Object) (types.Product, bool) {
	p, ok := product(obj)
	if !ok {
		return types.Product{}, false
	}
	fav := obj.Bool("isFavorite", false)
	p.IsFavorite = &fav
	return p, true
})
