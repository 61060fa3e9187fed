// Package types defines the domain records parsed from Virtusize API responses and the
// outbound parameter builders serialized into request payloads.
package types

import "strings"

const (
	// FitLoose is the general fit key for loose, wide and flared garments.
	FitLoose = "loose"
	// FitTight is the general fit key for tight and slim garments.
	FitTight = "tight"
	// FitRegular is the general fit key for everything else.
	FitRegular = "regular"
)

// accessoryProductTypes lists the product type ids treated as accessories.
var accessoryProductTypes = map[int]struct{}{18: {}, 19: {}, 25: {}, 26: {}}

// UserData carries per-user flags returned with a product check.
type UserData struct {
	ShouldSeePhTooltip bool `json:"should_see_ph_tooltip"`
	WardrobeHasP       bool `json:"wardrobeHasP"`
	WardrobeHasR       bool `json:"wardrobeHasR"`
	WardrobeHasM       bool `json:"wardrobeHasM"`
	WardrobeActive     bool `json:"wardrobeActive"`
}

// Data is the "data" section of a product check response.
type Data struct {
	ValidProduct    bool      `json:"validProduct"`
	FetchMetaData   bool      `json:"fetchMetaData"`
	UserData        *UserData `json:"userData,omitempty"`
	ProductDataID   int       `json:"productDataId"`
	ProductTypeName string    `json:"productTypeName"`
	StoreName       string    `json:"storeName"`
	StoreID         int       `json:"storeId"`
	ProductTypeID   int       `json:"productTypeId"`
}

// ShouldSeePhTooltip reports whether the product highlight tooltip should be shown.
func (d Data) ShouldSeePhTooltip() bool {
	return d.UserData != nil && d.UserData.ShouldSeePhTooltip
}

// ProductCheck is the response of the product check endpoint.
type ProductCheck struct {
	Data      *Data  `json:"data,omitempty"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	// RawJSON is the response body the record was parsed from.
	RawJSON string `json:"-"`
}

// IsValid reports whether the service recognized the product.
func (p ProductCheck) IsValid() bool {
	return p.Data != nil && p.Data.ValidProduct
}

// Store is a store resource.
type Store struct {
	ID                int     `json:"id"`
	SurveyLink        string  `json:"surveyLink"`
	Name              string  `json:"name"`
	ShortName         string  `json:"shortName"`
	LengthUnitID      int     `json:"lengthUnitId"`
	APIKey            string  `json:"apiKey"`
	Created           string  `json:"created"`
	Updated           string  `json:"updated"`
	Disabled          bool    `json:"disabled"`
	TypeMapperEnabled bool    `json:"typemapperEnabled"`
	Region            *string `json:"region,omitempty"`
}

// Weight is a labeled weight factor of a product type.
type Weight struct {
	Factor string  `json:"factor"`
	Value  float64 `json:"value"`
}

// ProductType describes a product category and the types it can be compared with.
type ProductType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// Weights holds one entry per label, sorted by label.
	Weights        []Weight `json:"weights"`
	CompatibleWith []int    `json:"compatibleWith"`
}

// Weight returns the weight for a label.
func (p ProductType) Weight(factor string) (float64, bool) {
	for _, w := range p.Weights {
		if w.Factor == factor {
			return w.Value, true
		}
	}
	return 0, false
}

// IsCompatibleWith reports whether items of type id can be compared with this type.
func (p ProductType) IsCompatibleWith(id int) bool {
	for _, c := range p.CompatibleWith {
		if c == id {
			return true
		}
	}
	return false
}

// BrandSizing compares the brand sizing of an item with the user's items.
type BrandSizing struct {
	Compare   string `json:"compare"`
	ItemBrand bool   `json:"itemBrand"`
}

// ProductMetaDataHints is the response of the product meta data hints endpoint.
type ProductMetaDataHints struct {
	APIKey             string `json:"apiKey"`
	ImageURL           string `json:"imageUrl"`
	CloudinaryPublicID string `json:"cloudinaryPublicId"`
	ExternalProductID  string `json:"externalProductId"`
}

// Measurement is a named body or garment measurement in millimeters.
type Measurement struct {
	Name       string `json:"name"`
	Millimeter int    `json:"millimeter"`
}

// ProductSize is a named size with its measurements, sorted by name.
type ProductSize struct {
	Name         string        `json:"name"`
	Measurements []Measurement `json:"measurements"`
}

// MeasurementMap returns the measurements keyed by name.
func (p ProductSize) MeasurementMap() map[string]int {
	out := make(map[string]int, len(p.Measurements))
	for _, m := range p.Measurements {
		out[m.Name] = m.Millimeter
	}
	return out
}

// StoreProductAdditionalInfo holds store supplied product details.
type StoreProductAdditionalInfo struct {
	Brand       string         `json:"brand"`
	Gender      *string        `json:"gender,omitempty"`
	Sizes       []ProductSize  `json:"sizes"`
	ModelInfo   map[string]any `json:"modelInfo,omitempty"`
	Fit         string         `json:"fit"`
	Style       string         `json:"style"`
	BrandSizing *BrandSizing   `json:"brandSizing,omitempty"`
}

// GeneralFitKey maps the store fit onto loose, tight or regular.
func (s StoreProductAdditionalInfo) GeneralFitKey() string {
	switch strings.ToLower(strings.TrimSpace(s.Fit)) {
	case "loose", "wide", "flared":
		return FitLoose
	case "tight", "slim":
		return FitTight
	default:
		return FitRegular
	}
}

// StoreProductMeta is the meta section of a store product.
type StoreProductMeta struct {
	ID             int                         `json:"id"`
	AdditionalInfo *StoreProductAdditionalInfo `json:"additionalInfo,omitempty"`
	Brand          string                      `json:"brand"`
	Gender         *string                     `json:"gender,omitempty"`
}

// Product is a store product or a user wardrobe product.
type Product struct {
	ID                 int               `json:"id"`
	Sizes              []ProductSize     `json:"sizes"`
	ExternalID         string            `json:"externalId,omitempty"`
	ProductType        int               `json:"productType"`
	Name               string            `json:"name"`
	CloudinaryPublicID string            `json:"cloudinaryPublicId"`
	StoreID            int               `json:"store"`
	IsFavorite         *bool             `json:"isFavorite,omitempty"`
	StoreProductMeta   *StoreProductMeta `json:"storeProductMeta,omitempty"`
}

// IsAccessory reports whether the product type is an accessory.
func (p Product) IsAccessory() bool {
	_, ok := accessoryProductTypes[p.ProductType]
	return ok
}

// UserBodyProfile is the body measurement profile of a user.
type UserBodyProfile struct {
	Gender       string         `json:"gender"`
	Age          int            `json:"age"`
	Height       int            `json:"height"`
	Weight       string         `json:"weight"`
	BodyData     []Measurement  `json:"bodyData"`
	FootwearData map[string]any `json:"footwearData,omitempty"`
}

// UserSessionInfo is the response of the sessions endpoint.
type UserSessionInfo struct {
	AccessToken string `json:"id"`
	AuthToken   string `json:"x-vs-auth"`
	BrowserID   string `json:"bid"`
	RawResponse string `json:"-"`
}

// UserAuthData carries the browser id and auth token sent by the web app.
type UserAuthData struct {
	BID  string `json:"x-vs-bid"`
	Auth string `json:"x-vs-auth"`
}

// I18nLocalization holds the inpage texts of the aoyama localization bundle.
type I18nLocalization struct {
	DefaultAccessoryText        string `json:"defaultAccessoryText"`
	HasProductAccessoryTopText  string `json:"hasProductAccessoryTopText"`
	HasProductAccessoryBottom   string `json:"hasProductAccessoryBottomText"`
	OneSizeCloseTopText         string `json:"oneSizeCloseTopText"`
	OneSizeSmallerTopText       string `json:"oneSizeSmallerTopText"`
	OneSizeLargerTopText        string `json:"oneSizeLargerTopText"`
	OneSizeCloseBottomText      string `json:"oneSizeCloseBottomText"`
	OneSizeSmallerBottomText    string `json:"oneSizeSmallerBottomText"`
	OneSizeLargerBottomText     string `json:"oneSizeLargerBottomText"`
	BodyProfileOneSizeText      string `json:"bodyProfileOneSizeText"`
	SizeComparisonMultiSizeText string `json:"sizeComparisonMultiSizeText"`
	BodyProfileMultiSizeText    string `json:"bodyProfileMultiSizeText"`
	NoDataText                  string `json:"noDataText"`
}
