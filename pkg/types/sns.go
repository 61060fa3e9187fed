package types

// SNSType identifies a social network used for sign in.
type SNSType string

const (
	SNSFacebook SNSType = "facebook"
	SNSGoogle   SNSType = "google"
	SNSLine     SNSType = "line"
)

// SNSUser is the common view over social network profiles.
type SNSUser interface {
	SNSType() SNSType
	UserID() string
	DisplayName() string
	EmailAddress() string
}

// FacebookUser is a Facebook Graph API profile.
type FacebookUser struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

func (u FacebookUser) SNSType() SNSType     { return SNSFacebook }
func (u FacebookUser) UserID() string       { return u.ID }
func (u FacebookUser) DisplayName() string  { return u.Name }
func (u FacebookUser) EmailAddress() string { return u.Email }

// GoogleUser is an OpenID Connect userinfo profile from Google.
type GoogleUser struct {
	Sub        string `json:"sub"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Locale     string `json:"locale"`
	PictureURL string `json:"picture"`
}

func (u GoogleUser) SNSType() SNSType     { return SNSGoogle }
func (u GoogleUser) UserID() string       { return u.Sub }
func (u GoogleUser) DisplayName() string  { return u.Name }
func (u GoogleUser) EmailAddress() string { return u.Email }
