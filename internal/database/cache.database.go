package database

import (
	"fmt"
	"wellread/config"
	"wellread/internal/logger"

	"github.com/valkey-io/valkey-go"
)

// Valkey database index organization. Each index provides logical separation
// for a cache category.
const (
	// GENERAL_CACHE_INDEX (DB 0) - general purpose caching, including book
	// stats and catalog responses
	GENERAL_CACHE_INDEX = iota

	// SESSION_CACHE_INDEX (DB 1) - per-user session state, including the
	// recommendation shown-history
	SESSION_CACHE_INDEX

	// USER_CACHE_INDEX (DB 2) - user profiles and social counts
	USER_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 3) - pubsub fan-out for notification push
	EVENTS_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := logger.New("database").Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.ErrMsg("failed to initialize cache database: address or port is empty")
	}

	newClient := func(index int) (valkey.Client, error) {
		return valkey.NewClient(
			valkey.ClientOption{
				InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
				SelectDB:    index,
			},
		)
	}

	var cacheDB Cache
	var err error

	cacheDB.General, err = newClient(GENERAL_CACHE_INDEX)
	if err != nil {
		return log.Err("failed to create general valkey client", err)
	}

	cacheDB.Session, err = newClient(SESSION_CACHE_INDEX)
	if err != nil {
		return log.Err("failed to create session valkey client", err)
	}

	cacheDB.User, err = newClient(USER_CACHE_INDEX)
	if err != nil {
		return log.Err("failed to create user valkey client", err)
	}

	cacheDB.Events, err = newClient(EVENTS_CACHE_INDEX)
	if err != nil {
		return log.Err("failed to create events valkey client", err)
	}

	s.Cache = cacheDB

	log.Info("cache database initialized")
	return nil
}
