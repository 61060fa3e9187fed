package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/virtusize/virtusize-go/internal/config"
	"github.com/virtusize/virtusize-go/internal/metrics"
	"github.com/virtusize/virtusize-go/pkg/client"
	"github.com/virtusize/virtusize-go/pkg/endpoint"
	"github.com/virtusize/virtusize-go/pkg/session"
	"github.com/virtusize/virtusize-go/pkg/types"
)

const usage = `usage: virtusize [flags] <command> [args]

commands:
  product-check <externalId>   check whether a product is known
  store                        show the store of the API key
  store-product <id>           show a store product
  product-types                list product types
  latest-version               show the latest web app version
  i18n [en|ja|ko]              show the localization texts
  session                      create or refresh the user session
  user-products                list the user's wardrobe
  body-profile                 show the user's body profile
  delete-user                  delete the user's data
  recommend <externalId>       recommend sizes for a product
  send-event <name>            send an event
  send-order <file.yaml>       send an order read from YAML

flags:
`

// errUsage marks command line mistakes.
var errUsage = errors.New("invalid usage")

type cli struct {
	client *client.Client
	out    io.Writer
	log    zerolog.Logger
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("virtusize", flag.ContinueOnError)
	fs.SetOutput(out)
	metricsFile := fs.String("metrics-file", "", "write client metrics to this file in Prometheus text format")
	memorySession := fs.Bool("memory-session", false, "keep the session in memory instead of the session file")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	opts := []client.TaskOption{
		client.WithLogger(logger),
		client.WithObserver(metrics.NewClientMetrics(registry)),
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, client.WithLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)))
	}
	task, err := client.NewTask(client.TaskConfig{Timeout: cfg.Timeout, UserAgent: "virtusize-cli/" + version}, opts...)
	if err != nil {
		return err
	}

	var store session.Store = session.NewMemoryStore()
	if !*memorySession && cfg.SessionFile != "" {
		fileStore, err := session.NewFileStore(cfg.SessionFile)
		if err != nil {
			return err
		}
		store = fileStore
	}

	c, err := client.New(client.Config{
		APIKey:      cfg.APIKey,
		Environment: cfg.Environment,
		UserID:      cfg.UserID,
		BaseURL:     cfg.BaseURL,
		Task:        task,
		Session:     store,
		Logger:      &logger,
	})
	if err != nil {
		return err
	}

	cmdErr := (&cli{client: c, out: out, log: logger}).dispatch(ctx, fs.Arg(0), fs.Args()[1:])
	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, registry); err != nil {
			logger.Warn().Err(err).Str("path", *metricsFile).Msg("failed to write metrics")
		}
	}
	return cmdErr
}

func (c *cli) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "product-check":
		id, err := oneArg(command, args)
		if err != nil {
			return err
		}
		pc, err := c.client.ProductCheck(ctx, id)
		if err != nil {
			return err
		}
		return c.print(pc)
	case "store":
		s, err := c.client.StoreByAPIKey(ctx)
		if err != nil {
			return err
		}
		return c.print(s)
	case "store-product":
		raw, err := oneArg(command, args)
		if err != nil {
			return err
		}
		id, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: store product id %q is not a number", errUsage, raw)
		}
		p, err := c.client.StoreProduct(ctx, id)
		if err != nil {
			return err
		}
		return c.print(p)
	case "product-types":
		pts, err := c.client.ProductTypes(ctx)
		if err != nil {
			return err
		}
		return c.print(pts)
	case "latest-version":
		v, err := c.client.LatestAoyamaVersion(ctx)
		if err != nil {
			c.log.Warn().Err(err).Str("fallback", endpoint.DefaultAoyamaVersion).Msg("using default aoyama version")
			v = endpoint.DefaultAoyamaVersion
		}
		return c.print(map[string]string{"version": v, "webView": endpoint.WebViewPath(v)})
	case "i18n":
		lang := endpoint.English
		if len(args) > 0 {
			lang = endpoint.Language(strings.ToLower(args[0]))
		}
		loc, err := c.client.I18n(ctx, lang, types.I18nLocalization{})
		if err != nil {
			return err
		}
		return c.print(loc)
	case "session":
		info, err := c.client.UserSessionInfo(ctx)
		if err != nil {
			return err
		}
		return c.print(map[string]any{"bid": info.BrowserID, "hasAuthToken": info.AuthToken != ""})
	case "user-products":
		products, err := c.client.UserProducts(ctx)
		if err != nil {
			return err
		}
		return c.print(products)
	case "body-profile":
		profile, err := c.client.UserBodyProfile(ctx)
		if err != nil {
			return err
		}
		return c.print(profile)
	case "delete-user":
		if err := c.client.DeleteUser(ctx); err != nil {
			return err
		}
		return c.print(map[string]bool{"deleted": true})
	case "recommend":
		id, err := oneArg(command, args)
		if err != nil {
			return err
		}
		return c.recommend(ctx, id)
	case "send-event":
		name, err := oneArg(command, args)
		if err != nil {
			return err
		}
		event := types.Event{Name: types.EventName(name)}
		if !event.Name.Known() {
			c.log.Warn().Str("event", name).Msg("sending an event name the web app does not emit")
		}
		if err := c.client.SendEvent(ctx, event, types.EventContext{Version: version}); err != nil {
			return err
		}
		return c.print(map[string]string{"sent": name})
	case "send-order":
		path, err := oneArg(command, args)
		if err != nil {
			return err
		}
		order, err := readOrder(path)
		if err != nil {
			return err
		}
		if err := c.client.SendOrder(ctx, order); err != nil {
			return err
		}
		return c.print(map[string]any{"sent": order.ExternalOrderID(), "items": len(order.Items())})
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

// recommend runs the product check, store product, product types, session and body profile
// calls needed for a size recommendation.
func (c *cli) recommend(ctx context.Context, externalID string) error {
	pc, err := c.client.ProductCheck(ctx, externalID)
	if err != nil {
		return err
	}
	if !pc.IsValid() {
		return fmt.Errorf("product %q is not available for recommendations", externalID)
	}
	product, err := c.client.StoreProduct(ctx, pc.Data.ProductDataID)
	if err != nil {
		return err
	}
	productTypes, err := c.client.ProductTypes(ctx)
	if err != nil {
		return err
	}
	if _, err := c.client.UserSessionInfo(ctx); err != nil {
		return err
	}
	profile, err := c.client.UserBodyProfile(ctx)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("the user has no body profile")
	}

	params := types.NewBodyProfileRecommendedSizeParams(productTypes, product, *profile)
	recs, err := c.client.RecommendedSizes(ctx, params)
	if err != nil {
		return err
	}
	return c.print(recs)
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func oneArg(command string, args []string) (string, error) {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "", fmt.Errorf("%w: %s takes exactly one argument", errUsage, command)
	}
	return args[0], nil
}

func readOrder(path string) (types.Order, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Order{}, fmt.Errorf("reading order file: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return types.Order{}, fmt.Errorf("decoding order file %s: %w", path, err)
	}
	order, err := types.OrderFromMap(m)
	if err != nil {
		return types.Order{}, fmt.Errorf("reading order file %s: %w", path, err)
	}
	return order, nil
}
