package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtusize/virtusize-go/pkg/endpoint"
	"github.com/virtusize/virtusize-go/pkg/request"
	"github.com/virtusize/virtusize-go/pkg/types"
)

func newFactory(t *testing.T, cfg Config) Factory {
	t.Helper()
	if cfg.APIKey == "" {
		cfg.APIKey = "test_apiKey"
	}
	f, err := New(cfg)
	require.NoError(t, err)
	return f
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires api key", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{APIKey: "  "})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIKey is required")
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Parallel()
		f, err := New(Config{APIKey: " key "})
		require.NoError(t, err)
		assert.Equal(t, "key", f.APIKey())
		assert.Equal(t, endpoint.Global, f.Environment())
	})
}

func TestProductCheck(t *testing.T) {
	t.Parallel()

	f := newFactory(t, Config{Environment: endpoint.Japan}).WithBrowserID("bid")
	req, err := f.ProductCheck("694")
	require.NoError(t, err)
	assert.Equal(t, request.GET, req.Method())

	u, err := req.EncodedURL()
	require.NoError(t, err)
	assert.Equal(t, "https://services.virtusize.jp/product/check?apiKey=test_apiKey&externalId=694&version=1", u)
	assert.Equal(t, "bid", req.Headers()["x-vs-bid"])

	_, err = f.ProductCheck(" ")
	assert.ErrorIs(t, err, request.ErrInvalid)
}

func TestStoreEndpoints(t *testing.T) {
	t.Parallel()

	f := newFactory(t, Config{})

	req, err := f.StoreByAPIKey()
	require.NoError(t, err)
	u, err := req.EncodedURL()
	require.NoError(t, err)
	assert.Equal(t, "https://api.virtusize.com/a/api/v3/stores/api-key/test_apiKey?format=json", u)

	req, err = f.StoreProduct(7110384)
	require.NoError(t, err)
	u, err = req.EncodedURL()
	require.NoError(t, err)
	assert.Equal(t, "https://api.virtusize.com/a/api/v3/store-products/7110384?format=json", u)

	_, err = f.StoreProduct(0)
	assert.ErrorIs(t, err, request.ErrInvalid)

	req, err = f.ProductTypes()
	require.NoError(t, err)
	assert.Equal(t, "https://services.virtusize.com/a/api/v3/product-types", req.URL())

	req, err = f.LatestAoyamaVersion()
	require.NoError(t, err)
	assert.Equal(t, "https://static.api.virtusize.com/a/aoyama/latest.txt", req.URL())

	req, err = f.I18n("")
	require.NoError(t, err)
	assert.Equal(t, "https://i18n.virtusize.jp/bundle-payloads/aoyama/en", req.URL())
}

func TestOrder(t *testing.T) {
	t.Parallel()

	f := newFactory(t, Config{UserID: "123"})
	order := types.NewOrderBuilder("888400111032").
		AddItem(types.OrderItem{ExternalProductID: "P001", Size: "L", ImageURL: "u", Currency: "JPY", UnitPrice: 10}).
		Build()

	req, err := f.Order(order)
	require.NoError(t, err)
	assert.Equal(t, request.POST, req.Method())
	assert.Equal(t, "https://api.virtusize.com/a/api/v3/orders", req.URL())
	params := req.Params()
	assert.Equal(t, "123", params["externalUserId"])
	assert.Equal(t, "test_apiKey", params["apiKey"])

	_, err = f.Order(types.NewOrderBuilder("").Build())
	assert.ErrorIs(t, err, request.ErrInvalid)
}

func TestAuthorizedEndpoints(t *testing.T) {
	t.Parallel()

	f := newFactory(t, Config{})

	for name, build := range map[string]func(Factory) (request.Request, error){
		"delete user":       Factory.DeleteUser,
		"user products":     Factory.UserProducts,
		"user body profile": Factory.UserBodyProfile,
	} {
		build := build
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := build(f)
			assert.ErrorIs(t, err, ErrMissingToken)

			req, err := build(f.WithAccessToken("access"))
			require.NoError(t, err)
			auth, ok := req.Auth()
			require.True(t, ok)
			assert.Equal(t, "Token access", auth.HeaderValue())
		})
	}
}

func TestSessions(t *testing.T) {
	t.Parallel()

	f := newFactory(t, Config{})

	req, err := f.Sessions("")
	require.NoError(t, err)
	assert.Empty(t, req.Headers())

	req, err = f.Sessions("auth")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x-vs-auth": "auth", "Cookie": ""}, req.Headers())
}

func TestRecommendedSizeRouting(t *testing.T) {
	t.Parallel()

	f := newFactory(t, Config{Environment: endpoint.Korea})
	params := types.NewBodyProfileRecommendedSizeParams(nil, types.Product{ID: 1, ProductType: 8}, types.UserBodyProfile{})

	v2, err := f.RecommendedSize(types.RecommendedSizeV2, params)
	require.NoError(t, err)
	assert.Equal(t, "https://size-recommendation.virtusize.kr/item", v2.URL())

	v1, err := f.RecommendedSize(types.RecommendedSizeV1, params)
	require.NoError(t, err)
	assert.Equal(t, "https://services.virtusize.kr/item", v1.URL())
	assert.Contains(t, v1.Params(), "bodyData")
}

func TestBaseURLOverride(t *testing.T) {
	t.Parallel()

	f := newFactory(t, Config{BaseURL: "http://127.0.0.1:8090/"})

	req, err := f.ProductTypes()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8090/services/a/api/v3/product-types", req.URL())

	req, err = f.Event(types.Event{Name: types.EventUserOpenedWidget}, types.EventContext{})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8090/events", req.URL())
	assert.Equal(t, "test_apiKey", req.Params()["apiKey"])

	_, err = f.Event(types.Event{}, types.EventContext{})
	assert.ErrorIs(t, err, request.ErrInvalid)

	req, err = f.ProductMetaDataHints(2, "694", "https://example.com/p.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8090/rest-api/v1/product-meta-data-hints", req.URL())
}

func TestStoreByAPIKeyEscapesTheKey(t *testing.T) {
	t.Parallel()

	f := newFactory(t, Config{APIKey: "key/with space?"})
	req, err := f.StoreByAPIKey()
	require.NoError(t, err)
	u, err := req.EncodedURL()
	require.NoError(t, err)
	assert.Equal(t, "https://api.virtusize.com/a/api/v3/stores/api-key/key%2Fwith%20space%3F?format=json", u)
	assert.Equal(t, "/a/api/v3/stores/api-key/key/with space?", req.Path())
}

func TestUserID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "123", newFactory(t, Config{UserID: "123"}).UserID())
	assert.Empty(t, newFactory(t, Config{}).UserID())
}
