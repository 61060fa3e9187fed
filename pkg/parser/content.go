package parser

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/virtusize/virtusize-go/pkg/types"
)

// Event parses an event sent by the web app. An event without a name carries no data.
// Unknown names are kept; callers check Name.Known.
var Event = Func[types.Event](func(obj Object) (types.Event, bool) {
	name, ok := obj.NonBlank("eventName")
	if !ok {
		return types.Event{}, false
	}
	return types.Event{
		Name: types.EventName(name),
		Data: map[string]any(obj),
	}, true
})

// LatestAoyamaVersion parses the latest web app version. Versions that are not valid
// semantic versions carry no data.
var LatestAoyamaVersion = Func[string](func(obj Object) (string, bool) {
	return validVersion(obj.String("version", ""))
})

func validVersion(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if _, err := semver.StrictNewVersion(raw); err != nil {
		return "", false
	}
	return raw, true
}

// LatestAoyamaVersionBody decodes the latest version body. The file is served either as a
// {"version": "x.y.z"} object or as the bare version text.
func LatestAoyamaVersionBody() Decoder[string] {
	one := One[string](LatestAoyamaVersion)
	return func(body []byte) (string, error) {
		if v, ok := validVersion(string(body)); ok {
			return v, nil
		}
		return one(body)
	}
}

// I18n returns a parser for the aoyama localization bundle. Texts missing from the bundle
// fall back to defaults.
func I18n(defaults types.I18nLocalization) Parser[types.I18nLocalization] {
	return Func[types.I18nLocalization](func(obj Object) (types.I18nLocalization, bool) {
		inpage := path(obj, "keys", "apps", "aoyama", "inpage")
		oneSize := path(inpage, "oneSize")
		multiSize := path(inpage, "multiSize")
		accessory := path(inpage, "accessory")
		return types.I18nLocalization{
			DefaultAccessoryText:        inpage.String("defaultAccessoryText", defaults.DefaultAccessoryText),
			HasProductAccessoryTopText:  accessory.String("hasProductLead", defaults.HasProductAccessoryTopText),
			HasProductAccessoryBottom:   accessory.String("hasProduct", defaults.HasProductAccessoryBottom),
			OneSizeCloseTopText:         oneSize.String("closeLead", defaults.OneSizeCloseTopText),
			OneSizeSmallerTopText:       oneSize.String("smallerLead", defaults.OneSizeSmallerTopText),
			OneSizeLargerTopText:        oneSize.String("largerLead", defaults.OneSizeLargerTopText),
			OneSizeCloseBottomText:      oneSize.String("close", defaults.OneSizeCloseBottomText),
			OneSizeSmallerBottomText:    oneSize.String("smaller", defaults.OneSizeSmallerBottomText),
			OneSizeLargerBottomText:     oneSize.String("larger", defaults.OneSizeLargerBottomText),
			BodyProfileOneSizeText:      oneSize.String("bodyProfile", defaults.BodyProfileOneSizeText),
			SizeComparisonMultiSizeText: multiSize.String("sizeComparison", defaults.SizeComparisonMultiSizeText),
			BodyProfileMultiSizeText:    multiSize.String("bodyProfile", defaults.BodyProfileMultiSizeText),
			NoDataText:                  inpage.String("noDataText", defaults.NoDataText),
		}, true
	})
}

// path walks nested objects. A missing step yields an empty object.
func path(obj Object, keys ...string) Object {
	cur := obj
	for _, k := range keys {
		next, ok := cur.Object(k)
		if !ok {
			return Object{}
		}
		cur = next
	}
	return cur
}
