package request

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// EncodedURL returns the URL with GET params appended to the query string. The auth token is
// added when the credential uses a query param.
func (r Request) EncodedURL() (string, error) {
	u, err := url.Parse(r.url)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	query := u.Query()
	if !r.method.HasBody() {
		keys := make([]string, 0, len(r.params))
		for k := range r.params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v, err := queryValue(r.params[k])
			if err != nil {
				return "", fmt.Errorf("encoding param %q: %w", k, err)
			}
			query.Set(k, v)
		}
	}
	if r.auth != nil && r.auth.QueryParam != "" {
		query.Set(r.auth.QueryParam, r.auth.Token)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// Body returns the JSON body for methods that carry one. It is nil when there are no params.
func (r Request) Body() ([]byte, error) {
	if !r.method.HasBody() || len(r.params) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(r.params)
	if err != nil {
		return nil, fmt.Errorf("encoding body: %w", err)
	}
	return b, nil
}

func queryValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
