package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/virtusize/virtusize-go/pkg/api"
	"github.com/virtusize/virtusize-go/pkg/endpoint"
	"github.com/virtusize/virtusize-go/pkg/parser"
	"github.com/virtusize/virtusize-go/pkg/request"
	"github.com/virtusize/virtusize-go/pkg/session"
	"github.com/virtusize/virtusize-go/pkg/types"
)

// Config holds typed client configuration.
type Config struct {
	// APIKey is the store API key. Required.
	APIKey string
	// Environment selects the Virtusize hosts. Defaults to endpoint.Default.
	Environment endpoint.Environment
	// UserID is the store's external user id sent with orders.
	UserID string
	// BaseURL replaces every Virtusize host, for example with a local fake API.
	BaseURL string
	// Task sends the requests. Defaults to NewTask(TaskConfig{}).
	Task *Task
	// Session holds the browser id and tokens. Defaults to a MemoryStore.
	Session session.Store
	// Logger defaults to zerolog.Nop().
	Logger *zerolog.Logger
}

// Client is the typed SDK for the Virtusize APIs.
type Client struct {
	factory api.Factory
	task    *Task
	session session.Store
	log     zerolog.Logger
}

// New creates a client.
func New(cfg Config) (*Client, error) {
	factory, err := api.New(api.Config{
		APIKey:      cfg.APIKey,
		Environment: cfg.Environment,
		UserID:      cfg.UserID,
		BaseURL:     cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	task := cfg.Task
	if task == nil {
		task, err = NewTask(TaskConfig{})
		if err != nil {
			return nil, err
		}
	}
	store := cfg.Session
	if store == nil {
		store = session.NewMemoryStore()
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		factory: factory,
		task:    task,
		session: store,
		log:     logger.With().Str("component", "client").Logger(),
	}, nil
}

// Environment returns the configured environment.
func (c *Client) Environment() endpoint.Environment { return c.factory.Environment() }

// Session returns the session store.
func (c *Client) Session() session.Store { return c.session }

func (c *Client) factoryFor(ctx context.Context) (api.Factory, error) {
	bid, err := c.session.BrowserID(ctx)
	if err != nil {
		return api.Factory{}, fmt.Errorf("loading browser id: %w", err)
	}
	return c.factory.WithBrowserID(bid), nil
}

func (c *Client) authorizedFactory(ctx context.Context) (api.Factory, error) {
	f, err := c.factoryFor(ctx)
	if err != nil {
		return f, err
	}
	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return f, fmt.Errorf("loading access token: %w", err)
	}
	return f.WithAccessToken(token), nil
}

// run builds the request with build and executes it. Build failures become KindInvalidInput.
func run[T any](
	ctx context.Context,
	c *Client,
	f api.Factory,
	build func(api.Factory) (request.Request, error),
	decode parser.Decoder[T],
) (T, error) {
	req, err := build(f)
	if err != nil {
		var zero T
		if errors.Is(err, request.ErrInvalid) || errors.Is(err, api.ErrMissingToken) {
			return zero, newError(KindInvalidInput, err, "%v", err)
		}
		return zero, err
	}
	return Execute(ctx, c.task, req, decode).Result()
}

func callPublic[T any](
	ctx context.Context,
	c *Client,
	build func(api.Factory) (request.Request, error),
	decode parser.Decoder[T],
) (T, error) {
	f, err := c.factoryFor(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return run(ctx, c, f, build, decode)
}

func callAuthorized[T any](
	ctx context.Context,
	c *Client,
	build func(api.Factory) (request.Request, error),
	decode parser.Decoder[T],
) (T, error) {
	f, err := c.authorizedFactory(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return run(ctx, c, f, build, decode)
}

// ProductCheck reports whether the product with externalID is known to Virtusize.
func (c *Client) ProductCheck(ctx context.Context, externalID string) (types.ProductCheck, error) {
	pc, err := callPublic(ctx, c, func(f api.Factory) (request.Request, error) {
		return f.ProductCheck(externalID)
	}, parser.ProductCheckBody())
	if err != nil {
		return types.ProductCheck{}, fmt.Errorf("checking product %q: %w", externalID, err)
	}
	return pc, nil
}

// StoreProduct returns a store product by its Virtusize id.
func (c *Client) StoreProduct(ctx context.Context, productID int) (types.Product, error) {
	p, err := callPublic(ctx, c, func(f api.Factory) (request.Request, error) {
		return f.StoreProduct(productID)
	}, parser.One[types.Product](parser.StoreProduct))
	if err != nil {
		return types.Product{}, fmt.Errorf("getting store product %d: %w", productID, err)
	}
	return p, nil
}

// ProductTypes returns every product type.
func (c *Client) ProductTypes(ctx context.Context) ([]types.ProductType, error) {
	pts, err := callPublic(ctx, c, api.Factory.ProductTypes, parser.List[types.ProductType](parser.ProductType))
	if err != nil {
		return nil, fmt.Errorf("listing product types: %w", err)
	}
	return pts, nil
}

// StoreByAPIKey returns the store owning the configured API key.
func (c *Client) StoreByAPIKey(ctx context.Context) (types.Store, error) {
	s, err := callPublic(ctx, c, api.Factory.StoreByAPIKey, parser.One[types.Store](parser.Store))
	if err != nil {
		return types.Store{}, fmt.Errorf("getting store: %w", err)
	}
	return s, nil
}

// SendOrder sends a completed order for the configured user. An order without a region takes the
// region of the store.
func (c *Client) SendOrder(ctx context.Context, order types.Order) error {
	if strings.TrimSpace(c.factory.UserID()) == "" {
		return fmt.Errorf("sending order %q: %w", order.ExternalOrderID(),
			newError(KindInvalidInput, nil, "externalUserId is required to send an order"))
	}
	if err := order.Validate(); err != nil {
		return fmt.Errorf("sending order %q: %w", order.ExternalOrderID(),
			newError(KindInvalidInput, err, "%v", err))
	}
	if _, ok := order.Region(); !ok {
		store, err := c.StoreByAPIKey(ctx)
		if err != nil {
			return fmt.Errorf("sending order %q: %w", order.ExternalOrderID(), err)
		}
		if store.Region != nil {
			order = order.Builder().WithRegion(*store.Region).Build()
		}
	}

	_, err := callPublic(ctx, c, func(f api.Factory) (request.Request, error) {
		return f.Order(order)
	}, parser.Discard())
	if err != nil {
		return fmt.Errorf("sending order %q: %w", order.ExternalOrderID(), err)
	}
	c.log.Info().Str("order", order.ExternalOrderID()).Int("items", len(order.Items())).Msg("order sent")
	return nil
}

// LatestAoyamaVersion returns the latest web app version. Callers usually fall back to
// endpoint.DefaultAoyamaVersion on error.
func (c *Client) LatestAoyamaVersion(ctx context.Context) (string, error) {
	v, err := callPublic(ctx, c, api.Factory.LatestAoyamaVersion, parser.LatestAoyamaVersionBody())
	if err != nil {
		return "", fmt.Errorf("getting latest aoyama version: %w", err)
	}
	return v, nil
}

// I18n returns the localization texts for lang. Texts missing from the bundle come from defaults.
func (c *Client) I18n(
	ctx context.Context,
	lang endpoint.Language,
	defaults types.I18nLocalization,
) (types.I18nLocalization, error) {
	loc, err := callPublic(ctx, c, func(f api.Factory) (request.Request, error) {
		return f.I18n(lang)
	}, parser.One(parser.I18n(defaults)))
	if err != nil {
		return types.I18nLocalization{}, fmt.Errorf("getting i18n bundle %q: %w", lang, err)
	}
	return loc, nil
}

// ProductMetaDataHints sends the product image. The result is nil when the backend returns no hints.
func (c *Client) ProductMetaDataHints(
	ctx context.Context,
	storeID int,
	externalID, imageURL string,
) (*types.ProductMetaDataHints, error) {
	hints, err := callPublic(ctx, c, func(f api.Factory) (request.Request, error) {
		return f.ProductMetaDataHints(storeID, externalID, imageURL)
	}, parser.Optional[types.ProductMetaDataHints](parser.ProductMetaDataHints))
	if err != nil {
		return nil, fmt.Errorf("sending product meta data hints for %q: %w", externalID, err)
	}
	return hints, nil
}

// SendEvent posts an event.
func (c *Client) SendEvent(ctx context.Context, event types.Event, ec types.EventContext) error {
	_, err := callPublic(ctx, c, func(f api.Factory) (request.Request, error) {
		return f.Event(event, ec)
	}, parser.Discard())
	if err != nil {
		return fmt.Errorf("sending event %q: %w", event.Name, err)
	}
	return nil
}

// UserSessionInfo creates or refreshes the user session and stores the returned tokens.
func (c *Client) UserSessionInfo(ctx context.Context) (types.UserSessionInfo, error) {
	authToken, err := c.session.AuthToken(ctx)
	if err != nil {
		return types.UserSessionInfo{}, fmt.Errorf("loading auth token: %w", err)
	}
	info, err := callPublic(ctx, c, func(f api.Factory) (request.Request, error) {
		return f.Sessions(authToken)
	}, parser.UserSessionInfoBody())
	if err != nil {
		return types.UserSessionInfo{}, fmt.Errorf("getting user session: %w", err)
	}

	if err := c.session.SetAccessToken(ctx, info.AccessToken); err != nil {
		return info, fmt.Errorf("storing access token: %w", err)
	}
	if info.AuthToken != "" {
		if err := c.session.SetAuthToken(ctx, info.AuthToken); err != nil {
			return info, fmt.Errorf("storing auth token: %w", err)
		}
	}
	c.log.Debug().Bool("has_auth_token", info.AuthToken != "").Msg("session refreshed")
	return info, nil
}

// DeleteUser deletes the current user's data and clears the stored tokens.
func (c *Client) DeleteUser(ctx context.Context) error {
	_, err := callAuthorized(ctx, c, api.Factory.DeleteUser, parser.Discard())
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if err := c.session.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// UserProducts returns the current user's wardrobe.
func (c *Client) UserProducts(ctx context.Context) ([]types.Product, error) {
	products, err := callAuthorized(ctx, c, api.Factory.UserProducts, parser.List[types.Product](parser.UserProduct))
	if err != nil {
		return nil, fmt.Errorf("listing user products: %w", err)
	}
	return products, nil
}

// UserBodyProfile returns the current user's body profile, or nil when none is recorded.
func (c *Client) UserBodyProfile(ctx context.Context) (*types.UserBodyProfile, error) {
	profile, err := callAuthorized(ctx, c, api.Factory.UserBodyProfile,
		parser.Optional[types.UserBodyProfile](parser.UserBodyProfile))
	if err != nil {
		return nil, fmt.Errorf("getting user body profile: %w", err)
	}
	return profile, nil
}

// RecommendedSizes returns the size recommendations for the product described by params.
func (c *Client) RecommendedSizes(
	ctx context.Context,
	params types.BodyProfileRecommendedSizeParams,
) ([]types.BodyProfileRecommendedSize, error) {
	recs, err := callPublic(ctx, c, func(f api.Factory) (request.Request, error) {
		return f.RecommendedSize(types.RecommendedSizeV2, params)
	}, parser.List(parser.RecommendedSize(types.RecommendedSizeV2)))
	if err != nil {
		return nil, fmt.Errorf("getting recommended sizes: %w", err)
	}
	return recs, nil
}

// RecommendedSizeV1 returns the legacy recommendation, or nil when the service has none.
func (c *Client) RecommendedSizeV1(
	ctx context.Context,
	params types.BodyProfileRecommendedSizeParams,
) (*types.BodyProfileRecommendedSize, error) {
	rec, err := callPublic(ctx, c, func(f api.Factory) (request.Request, error) {
		return f.RecommendedSize(types.RecommendedSizeV1, params)
	}, parser.Optional(parser.RecommendedSize(types.RecommendedSizeV1)))
	if err != nil {
		return nil, fmt.Errorf("getting legacy recommended size: %w", err)
	}
	return rec, nil
}
