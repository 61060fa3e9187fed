// Package api builds request descriptors for every Virtusize endpoint.
package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/virtusize/virtusize-go/pkg/endpoint"
	"github.com/virtusize/virtusize-go/pkg/request"
	"github.com/virtusize/virtusize-go/pkg/types"
)

const (
	headerBrowserID = "x-vs-bid"
	headerAuth      = "x-vs-auth"
	headerCookie    = "Cookie"
)

// Path prefixes used for each host when BaseURL overrides the environment.
const (
	PrefixServices           = "/services"
	PrefixEvents             = "/events"
	PrefixSizeRecommendation = "/size-recommendation"
	PrefixStatic             = "/static"
	PrefixI18n               = "/i18n"
)

// ErrMissingToken is returned when an authorized endpoint is requested without an access token.
var ErrMissingToken = errors.New("access token is required")

// Config holds request factory configuration.
type Config struct {
	// APIKey is the store API key.
	APIKey string
	// Environment selects the Virtusize hosts. Defaults to endpoint.Default.
	Environment endpoint.Environment
	// UserID is the store's external user id sent with orders.
	UserID string
	// BaseURL, when set, replaces every host. Each host gets its own path prefix on it.
	BaseURL string
}

// Factory builds request descriptors. It is an immutable value.
type Factory struct {
	cfg         Config
	browserID   string
	accessToken string
}

// New validates cfg and returns a factory.
func New(cfg Config) (Factory, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return Factory{}, fmt.Errorf("api: APIKey is required")
	}
	if cfg.Environment == "" {
		cfg.Environment = endpoint.Default
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return Factory{cfg: cfg}, nil
}

// APIKey returns the configured API key.
func (f Factory) APIKey() string { return f.cfg.APIKey }

// UserID returns the store's external user id.
func (f Factory) UserID() string { return f.cfg.UserID }

// Environment returns the configured environment.
func (f Factory) Environment() endpoint.Environment { return f.cfg.Environment }

// WithBrowserID returns a factory that sends bid in the x-vs-bid header.
func (f Factory) WithBrowserID(bid string) Factory {
	f.browserID = bid
	return f
}

// WithAccessToken returns a factory that authorizes requests with token.
func (f Factory) WithAccessToken(token string) Factory {
	f.accessToken = token
	return f
}

func (f Factory) host(prefix string, envURL func(endpoint.Environment) string) string {
	if f.cfg.BaseURL != "" {
		return f.cfg.BaseURL + prefix
	}
	return envURL(f.cfg.Environment)
}

func (f Factory) apiURL() string {
	return f.host("", endpoint.Environment.APIURL)
}

func (f Factory) servicesURL() string {
	return f.host(PrefixServices, endpoint.Environment.ServicesAPIURL)
}

func (f Factory) eventsURL() string {
	return f.host(PrefixEvents, endpoint.Environment.EventAPIURL)
}

func (f Factory) sizeRecommendationURL() string {
	return f.host(PrefixSizeRecommendation, endpoint.Environment.SizeRecommendationAPIURL)
}

func (f Factory) staticURL() string {
	return f.host(PrefixStatic, endpoint.Environment.StaticURL)
}

func (f Factory) i18nURL() string {
	return f.host(PrefixI18n, func(endpoint.Environment) string { return endpoint.I18nURL })
}

func (f Factory) builder(method request.Method, rawURL string) request.Builder {
	b := request.NewBuilder(method, rawURL)
	if f.browserID != "" {
		b = b.WithHeader(headerBrowserID, f.browserID)
	}
	return b
}

func (f Factory) authorized(method request.Method, rawURL string) (request.Builder, error) {
	if strings.TrimSpace(f.accessToken) == "" {
		return request.Builder{}, ErrMissingToken
	}
	return f.builder(method, rawURL).WithAuth(request.Auth{Token: f.accessToken}), nil
}

// ProductCheck checks whether a product is known to Virtusize.
func (f Factory) ProductCheck(externalID string) (request.Request, error) {
	if strings.TrimSpace(externalID) == "" {
		return request.Request{}, &request.ValidationError{Field: "externalId", Reason: "is required"}
	}
	return f.builder(request.GET, f.servicesURL()+endpoint.PathProductCheck).
		WithParams(map[string]any{
			"apiKey":     f.cfg.APIKey,
			"externalId": externalID,
			"version":    "1",
		}).
		Build()
}

// LatestAoyamaVersion fetches the latest web app version.
func (f Factory) LatestAoyamaVersion() (request.Request, error) {
	return f.builder(request.GET, f.staticURL()+endpoint.PathLatestAoyamaVersion).Build()
}

// ProductMetaDataHints sends the product image to the backend.
func (f Factory) ProductMetaDataHints(storeID int, externalID, imageURL string) (request.Request, error) {
	if strings.TrimSpace(imageURL) == "" {
		return request.Request{}, &request.ValidationError{Field: "imageUrl", Reason: "is required"}
	}
	return f.builder(request.POST, f.apiURL()+endpoint.PathProductMetaDataHints).
		WithParams(types.ProductMetaDataHintsParams(f.cfg.APIKey, storeID, externalID, imageURL)).
		Build()
}

// Event posts an event to the event API.
func (f Factory) Event(event types.Event, ec types.EventContext) (request.Request, error) {
	if event.Name == "" {
		return request.Request{}, &request.ValidationError{Field: "eventName", Reason: "is required"}
	}
	ec.APIKey = f.cfg.APIKey
	return f.builder(request.POST, f.eventsURL()).
		WithParams(types.EventParams(event, ec)).
		Build()
}

// Order sends an order.
func (f Factory) Order(order types.Order) (request.Request, error) {
	if err := order.Validate(); err != nil {
		return request.Request{}, &request.ValidationError{Field: "order", Reason: err.Error()}
	}
	return f.builder(request.POST, f.apiURL()+endpoint.PathOrders).
		WithParams(order.ToRequestParams(f.cfg.APIKey, f.cfg.UserID)).
		Build()
}

// StoreByAPIKey fetches the store of the configured API key.
func (f Factory) StoreByAPIKey() (request.Request, error) {
	return f.builder(request.GET, f.apiURL()+endpoint.PathStoreViewAPIKey+url.PathEscape(f.cfg.APIKey)).
		WithParam("format", "json").
		Build()
}

// StoreProduct fetches a store product by its Virtusize id.
func (f Factory) StoreProduct(productID int) (request.Request, error) {
	if productID <= 0 {
		return request.Request{}, &request.ValidationError{Field: "productId", Reason: "must be positive"}
	}
	return f.builder(request.GET, f.apiURL()+endpoint.PathStoreProducts+strconv.Itoa(productID)).
		WithParam("format", "json").
		Build()
}

// ProductTypes fetches every product type.
func (f Factory) ProductTypes() (request.Request, error) {
	return f.builder(request.GET, f.servicesURL()+endpoint.PathProductTypes).Build()
}

// Sessions creates or refreshes a user session. The auth token, when known, is sent in the
// x-vs-auth header together with an empty Cookie.
func (f Factory) Sessions(authToken string) (request.Request, error) {
	b := f.builder(request.POST, f.apiURL()+endpoint.PathSessions)
	if authToken != "" {
		b = b.WithHeader(headerAuth, authToken).WithHeader(headerCookie, "")
	}
	return b.Build()
}

// DeleteUser deletes the current user's data.
func (f Factory) DeleteUser() (request.Request, error) {
	b, err := f.authorized(request.DELETE, f.apiURL()+endpoint.PathUser)
	if err != nil {
		return request.Request{}, err
	}
	return b.Build()
}

// UserProducts fetches the current user's wardrobe.
func (f Factory) UserProducts() (request.Request, error) {
	b, err := f.authorized(request.GET, f.apiURL()+endpoint.PathUserProducts)
	if err != nil {
		return request.Request{}, err
	}
	return b.Build()
}

// UserBodyProfile fetches the current user's body measurements.
func (f Factory) UserBodyProfile() (request.Request, error) {
	b, err := f.authorized(request.GET, f.apiURL()+endpoint.PathUserBodyMeasurements)
	if err != nil {
		return request.Request{}, err
	}
	return b.Build()
}

// RecommendedSize requests a body profile size recommendation. The version selects the
// service: RecommendedSizeV1 is served by the services API and RecommendedSizeV2 by the size
// recommendation service.
func (f Factory) RecommendedSize(
	version types.RecommendedSizeVersion,
	params types.BodyProfileRecommendedSizeParams,
) (request.Request, error) {
	base := f.sizeRecommendationURL()
	if version == types.RecommendedSizeV1 {
		base = f.servicesURL()
	}
	return f.builder(request.POST, base+endpoint.PathGetSize).
		WithParams(params.ToRequestParams()).
		Build()
}

// I18n fetches the localization bundle for a language.
func (f Factory) I18n(lang endpoint.Language) (request.Request, error) {
	if lang == "" {
		lang = endpoint.English
	}
	return f.builder(request.GET, f.i18nURL()+endpoint.PathI18n+string(lang)).Build()
}
