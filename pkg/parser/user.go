package parser

import (
	"strings"

	"github.com/virtusize/virtusize-go/pkg/types"
)

// UserBodyProfile parses the user body measurements. A profile missing age, height, weight
// or body data carries no data.
var UserBodyProfile = Func[types.UserBodyProfile](func(obj Object) (types.UserBodyProfile, bool) {
	age := obj.Int("age", 0)
	height := obj.Int("height", 0)
	weight := obj.String("weight", "")
	bodyData := measurementList(obj.IntMap("bodyData"))
	if age == 0 || height == 0 || strings.TrimSpace(weight) == "" || len(bodyData) == 0 {
		return types.UserBodyProfile{}, false
	}
	footwear, _ := obj.Map("footwearData")
	return types.UserBodyProfile{
		Gender:       obj.String("gender", ""),
		Age:          age,
		Height:       height,
		Weight:       weight,
		BodyData:     bodyData,
		FootwearData: footwear,
	}, true
})

// UserSessionInfo parses the sessions response. A session without an access token carries
// no data.
var UserSessionInfo = Func[types.UserSessionInfo](func(obj Object) (types.UserSessionInfo, bool) {
	token, ok := obj.NonBlank("id")
	if !ok {
		return types.UserSessionInfo{}, false
	}
	var bid string
	if user, ok := obj.Object("user"); ok {
		bid = user.String("bid", "")
	}
	return types.UserSessionInfo{
		AccessToken: token,
		AuthToken:   obj.String("x-vs-auth", ""),
		BrowserID:   bid,
	}, true
})

// UserSessionInfoBody decodes a sessions body and keeps the raw response on the record.
func UserSessionInfoBody() Decoder[types.UserSessionInfo] {
	one := One[types.UserSessionInfo](UserSessionInfo)
	return func(body []byte) (types.UserSessionInfo, error) {
		info, err := one(body)
		if err != nil {
			return types.UserSessionInfo{}, err
		}
		info.RawResponse = string(body)
		return info, nil
	}
}

// UserAuthData parses the auth data sent with a user-auth-data event.
var UserAuthData = Func[types.UserAuthData](func(obj Object) (types.UserAuthData, bool) {
	return types.UserAuthData{
		BID:  obj.String("x-vs-bid", ""),
		Auth: obj.String("x-vs-auth", ""),
	}, true
})

// FacebookUser parses a Graph API profile.
var FacebookUser = Func[types.FacebookUser](func(obj Object) (types.FacebookUser, bool) {
	id, ok := obj.NonBlank("id")
	if !ok {
		return types.FacebookUser{}, false
	}
	return types.FacebookUser{
		ID:        id,
		FirstName: obj.String("first_name", ""),
		LastName:  obj.String("last_name", ""),
		Name:      obj.String("name", ""),
		Email:     obj.String("email", ""),
	}, true
})

// GoogleUser parses an OpenID Connect userinfo profile.
var GoogleUser = Func[types.GoogleUser](func(obj Object) (types.GoogleUser, bool) {
	sub, ok := obj.NonBlank("sub")
	if !ok {
		return types.GoogleUser{}, false
	}
	return types.GoogleUser{
		Sub:        sub,
		GivenName:  obj.String("given_name", ""),
		FamilyName: obj.String("family_name", ""),
		Name:       obj.String("name", ""),
		Email:      obj.String("email", ""),
		Locale:     obj.String("locale", ""),
		PictureURL: obj.String("picture", ""),
	}, true
})
