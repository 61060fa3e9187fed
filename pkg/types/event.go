package types

import "strconv"

// EventName is the name of an event sent by the Virtusize web app.
type EventName string

const (
	EventUserSawProduct                EventName = "user-saw-product"
	EventUserSawWidgetButton           EventName = "user-saw-widget-button"
	EventUserOpenedWidget              EventName = "user-opened-widget"
	EventUserSelectedProduct           EventName = "user-selected-product"
	EventUserAddedProduct              EventName = "user-added-product"
	EventUserDeletedProduct            EventName = "user-deleted-product"
	EventUserChangedRecommendationType EventName = "user-changed-recommendation-type"
	EventUserCreatedSilhouette         EventName = "user-created-silhouette"
	EventUserUpdatedBodyMeasurements   EventName = "user-updated-body-measurements"
	EventUserAuthData                  EventName = "user-auth-data"
	EventUserLoggedIn                  EventName = "user-logged-in"
	EventUserLoggedOut                 EventName = "user-logged-out"
	EventUserDeletedData               EventName = "user-deleted-data"
)

var knownEvents = map[EventName]struct{}{
	EventUserSawProduct:                {},
	EventUserSawWidgetButton:           {},
	EventUserOpenedWidget:              {},
	EventUserSelectedProduct:           {},
	EventUserAddedProduct:              {},
	EventUserDeletedProduct:            {},
	EventUserChangedRecommendationType: {},
	EventUserCreatedSilhouette:         {},
	EventUserUpdatedBodyMeasurements:   {},
	EventUserAuthData:                  {},
	EventUserLoggedIn:                  {},
	EventUserLoggedOut:                 {},
	EventUserDeletedData:               {},
}

// Known reports whether the name is one of the defined event names.
func (n EventName) Known() bool {
	_, ok := knownEvents[n]
	return ok
}

// Event is an event raised by the web app or the SDK.
type Event struct {
	Name EventName `json:"eventName"`
	// Data is the full event object as received.
	Data map[string]any `json:"data,omitempty"`
}

const (
	eventType       = "user"
	eventSource     = "integration-go"
	eventUserCohort = "direct"
	eventWidgetType = "mobile"
)

// EventContext carries the device and SDK details attached to every event.
type EventContext struct {
	APIKey      string
	Orientation string
	Resolution  string
	Version     string
	// ProductCheck optionally ties the event to a checked product.
	ProductCheck *ProductCheck
}

// EventParams builds the payload for the event API. The "data" object of the event,
// when present, is merged into the top level.
func EventParams(event Event, ec EventContext) map[string]any {
	params := map[string]any{
		"name":               string(event.Name),
		"apiKey":             ec.APIKey,
		"type":               eventType,
		"source":             eventSource,
		"userCohort":         eventUserCohort,
		"widgetType":         eventWidgetType,
		"browserOrientation": ec.Orientation,
		"browserResolution":  ec.Resolution,
		"integrationVersion": ec.Version,
		"snippetVersion":     ec.Version,
	}
	if pc := ec.ProductCheck; pc != nil {
		if pc.Data != nil {
			params["storeId"] = strconv.Itoa(pc.Data.StoreID)
			params["storeName"] = pc.Data.StoreName
			params["storeProductType"] = pc.Data.ProductTypeName
		}
		params["storeProductExternalId"] = pc.ProductID
	}
	if nested, ok := event.Data["data"].(map[string]any); ok {
		for k, v := range nested {
			params[k] = v
		}
	}
	return params
}

// ProductMetaDataHintsParams builds the payload for the product meta data hints endpoint.
// storeID is omitted when zero.
func ProductMetaDataHintsParams(apiKey string, storeID int, externalID, imageURL string) map[string]any {
	params := map[string]any{
		"external_id": externalID,
		"image_url":   imageURL,
		"api_key":     apiKey,
	}
	if storeID != 0 {
		params["store_id"] = strconv.Itoa(storeID)
	}
	return params
}
