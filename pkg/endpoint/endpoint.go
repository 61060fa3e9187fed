// Package endpoint defines the Virtusize environments and the API paths served in each.
package endpoint

import (
	"fmt"
	"strings"
)

// Environment is a Virtusize deployment.
type Environment string

const (
	Testing Environment = "testing"
	Staging Environment = "staging"
	Global  Environment = "global"
	Japan   Environment = "japan"
	Korea   Environment = "korea"
)

// Default is the environment used when none is configured.
const Default = Global

// Region is the region parameter passed to the web app.
type Region string

const (
	RegionCOM Region = "com"
	RegionJP  Region = "jp"
	RegionKR  Region = "kr"
)

const (
	// DefaultAoyamaVersion is used when the latest web app version cannot be fetched.
	DefaultAoyamaVersion = "3.4.2"
	// I18nURL serves the localization bundles for every environment.
	I18nURL = "https://i18n.virtusize.jp"
)

type hosts struct {
	api, events, services, integration, sizeRecommendation, static string
}

var environments = map[Environment]hosts{
	Testing: {
		api:                "https://testing.virtusize.jp",
		events:             "https://events.testing.virtusize.jp",
		services:           "https://services.virtusize.jp/stg",
		integration:        "https://integration.virtusize.jp/staging",
		sizeRecommendation: "https://size-recommendation.staging.virtusize.jp",
		static:             "https://static.api.virtusize.jp",
	},
	Staging: {
		api:                "https://staging.virtusize.com",
		events:             "https://events.staging.virtusize.com",
		services:           "https://services.virtusize.com/stg",
		integration:        "https://integration.virtusize.com/staging",
		sizeRecommendation: "https://size-recommendation.staging.virtusize.jp",
		static:             "https://static.api.virtusize.com",
	},
	Global: {
		api:                "https://api.virtusize.com",
		events:             "https://events.virtusize.com",
		services:           "https://services.virtusize.com",
		integration:        "https://integration.virtusize.com/production",
		sizeRecommendation: "https://size-recommendation.virtusize.com",
		static:             "https://static.api.virtusize.com",
	},
	Japan: {
		api:                "https://api.virtusize.jp",
		events:             "https://events.virtusize.jp",
		services:           "https://services.virtusize.jp",
		integration:        "https://integration.virtusize.jp/production",
		sizeRecommendation: "https://size-recommendation.virtusize.jp",
		static:             "https://static.api.virtusize.jp",
	},
	Korea: {
		api:                "https://api.virtusize.kr",
		events:             "https://events.virtusize.kr",
		services:           "https://services.virtusize.kr",
		integration:        "https://integration.virtusize.kr/production",
		sizeRecommendation: "https://size-recommendation.virtusize.kr",
		static:             "https://static.api.virtusize.kr",
	},
}

// ParseEnvironment parses an environment name, case-insensitively.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(strings.ToLower(strings.TrimSpace(s)))
	if env == "" {
		return Default, nil
	}
	if _, ok := environments[env]; !ok {
		return "", fmt.Errorf("unknown environment %q", s)
	}
	return env, nil
}

func (e Environment) hosts() hosts {
	if h, ok := environments[e]; ok {
		return h
	}
	return environments[Default]
}

// APIURL is the base URL of the main API.
func (e Environment) APIURL() string { return e.hosts().api }

// EventAPIURL is the URL events are posted to.
func (e Environment) EventAPIURL() string { return e.hosts().events }

// ServicesAPIURL is the base URL of the services API.
func (e Environment) ServicesAPIURL() string { return e.hosts().services }

// IntegrationAPIURL is the base URL of the integration API.
func (e Environment) IntegrationAPIURL() string { return e.hosts().integration }

// SizeRecommendationAPIURL is the base URL of the size recommendation service.
func (e Environment) SizeRecommendationAPIURL() string { return e.hosts().sizeRecommendation }

// StaticURL is the base URL the web app is served from.
func (e Environment) StaticURL() string { return e.hosts().static }

// Region returns the web app region of the environment.
func (e Environment) Region() Region {
	switch e {
	case Testing, Japan:
		return RegionJP
	case Korea:
		return RegionKR
	default:
		return RegionCOM
	}
}

// WebViewEnv returns the web app environment name.
func (e Environment) WebViewEnv() string {
	switch e {
	case Testing, Staging:
		return "staging"
	default:
		return "production"
	}
}

// Language is a display language of the web app.
type Language string

const (
	English  Language = "en"
	Japanese Language = "ja"
	Korean   Language = "ko"
)

// Endpoint paths.
const (
	PathProductCheck         = "/product/check"
	PathGetSize              = "/item"
	PathLatestAoyamaVersion  = "/a/aoyama/latest.txt"
	PathProductMetaDataHints = "/rest-api/v1/product-meta-data-hints"
	PathOrders               = "/a/api/v3/orders"
	PathStoreViewAPIKey      = "/a/api/v3/stores/api-key/"
	PathStoreProducts        = "/a/api/v3/store-products/"
	PathProductTypes         = "/a/api/v3/product-types"
	PathSessions             = "/a/api/v3/sessions"
	PathUser                 = "/a/api/v3/users/me"
	PathUserProducts         = "/a/api/v3/user-products"
	PathUserBodyMeasurements = "/a/api/v3/user-body-measurements"
	PathI18n                 = "/bundle-payloads/aoyama/"
)

// WebViewPath returns the path of the web app page for a version.
func WebViewPath(version string) string {
	return "/a/aoyama/" + version + "/sdk-webview.html"
}
