// Package sns fetches the profile of a user signed in with a social network account.
package sns

import (
	"context"
	"fmt"
	"strings"

	"github.com/virtusize/virtusize-go/pkg/client"
	"github.com/virtusize/virtusize-go/pkg/parser"
	"github.com/virtusize/virtusize-go/pkg/request"
	"github.com/virtusize/virtusize-go/pkg/types"
)

const (
	// FacebookUserURL is the Graph API profile endpoint.
	FacebookUserURL = "https://graph.facebook.com/v2.9/me"
	// GoogleUserURL is the OpenID Connect userinfo endpoint.
	GoogleUserURL = "https://openidconnect.googleapis.com/v1/userinfo"

	facebookFields = "email,first_name,last_name,name,timezone,verified"
)

// Option configures a service.
type Option func(*options)

type options struct {
	url string
}

// WithURL replaces the profile endpoint.
func WithURL(u string) Option {
	return func(o *options) { o.url = strings.TrimSpace(u) }
}

func applyOptions(defaultURL string, opts []Option) options {
	o := options{url: defaultURL}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Service fetches the signed-in user of one network.
type Service interface {
	Type() types.SNSType
	User(ctx context.Context, accessToken string) (types.SNSUser, error)
}

// FacebookService reads the Facebook Graph profile.
type FacebookService struct {
	task *client.Task
	url  string
}

// NewFacebookService returns a Facebook service sending its requests through task.
func NewFacebookService(task *client.Task, opts ...Option) (*FacebookService, error) {
	if task == nil {
		return nil, fmt.Errorf("sns: task is required")
	}
	o := applyOptions(FacebookUserURL, opts)
	return &FacebookService{task: task, url: o.url}, nil
}

// Type implements Service.
func (s *FacebookService) Type() types.SNSType { return types.SNSFacebook }

// Profile returns the Facebook profile of the token owner.
func (s *FacebookService) Profile(ctx context.Context, accessToken string) (types.FacebookUser, error) {
	req, err := request.NewBuilder(request.GET, s.url).
		WithParam("fields", facebookFields).
		WithAuth(request.Auth{Token: accessToken, QueryParam: "access_token"}).
		Build()
	if err != nil {
		return types.FacebookUser{}, fmt.Errorf("building facebook profile request: %w", err)
	}
	user, err := client.Execute(ctx, s.task, req, parser.One[types.FacebookUser](parser.FacebookUser)).Result()
	if err != nil {
		return types.FacebookUser{}, fmt.Errorf("getting facebook profile: %w", err)
	}
	return user, nil
}

// User implements Service.
func (s *FacebookService) User(ctx context.Context, accessToken string) (types.SNSUser, error) {
	user, err := s.Profile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GoogleService reads the Google OpenID Connect profile.
type GoogleService struct {
	task *client.Task
	url  string
}

// NewGoogleService returns a Google service sending its requests through task.
func NewGoogleService(task *client.Task, opts ...Option) (*GoogleService, error) {
	if task == nil {
		return nil, fmt.Errorf("sns: task is required")
	}
	o := applyOptions(GoogleUserURL, opts)
	return &GoogleService{task: task, url: o.url}, nil
}

// Type implements Service.
func (s *GoogleService) Type() types.SNSType { return types.SNSGoogle }

// Profile returns the Google profile of the token owner.
func (s *GoogleService) Profile(ctx context.Context, accessToken string) (types.GoogleUser, error) {
	req, err := request.NewBuilder(request.GET, s.url).
		WithAuth(request.Auth{Token: accessToken, Scheme: "Bearer"}).
		Build()
	if err != nil {
		return types.GoogleUser{}, fmt.Errorf("building google profile request: %w", err)
	}
	user, err := client.Execute(ctx, s.task, req, parser.One[types.GoogleUser](parser.GoogleUser)).Result()
	if err != nil {
		return types.GoogleUser{}, fmt.Errorf("getting google profile: %w", err)
	}
	return user, nil
}

// User implements Service.
func (s *GoogleService) User(ctx context.Context, accessToken string) (types.SNSUser, error) {
	user, err := s.Profile(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return user, nil
}
