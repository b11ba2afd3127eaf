package app

import (
	"go.uber.org/zap"

	"restchat/internal/cache"
	"restchat/internal/domain"
	"restchat/internal/rest"
	identitysvc "restchat/internal/services/identity"
	mutationsvc "restchat/internal/services/mutation"
	querysvc "restchat/internal/services/query"
	"restchat/internal/session"
	"restchat/internal/store"
)

// Wire bundles the store, transport, cache and services for a consumer.
type Wire struct {
	Session   domain.Session
	API       domain.ChatAPI
	Cache     *cache.Cache
	Queries   *querysvc.Service
	Identity  *identitysvc.Service
	Mutations *mutationsvc.Service
}

// NewWire constructs the dependency graph from cfg. The persisted session,
// if any, is restored as part of construction.
func NewWire(cfg Config) (*Wire, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tokenStore := store.NewTokenFileStore(cfg.Home)
	sess, err := session.New(tokenStore)
	if err != nil {
		return nil, err
	}

	api := rest.New(cfg.ServerURL, cfg.HTTP, log.Named("rest"))
	resources := cache.New(log.Named("cache"))

	return &Wire{
		Session:   sess,
		API:       api,
		Cache:     resources,
		Queries:   querysvc.New(api, resources, sess),
		Identity:  identitysvc.New(api, resources, sess),
		Mutations: mutationsvc.New(api, resources, sess),
	}, nil
}
