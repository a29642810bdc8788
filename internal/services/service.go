package services

import (
	"wellread/config"
	"wellread/internal/database"
)

type Service struct {
	OpenLibrary *OpenLibraryService
	Transaction *TransactionService
	Scheduler   *SchedulerService
	History     HistoryStore
}

func New(db database.DB, config config.Config) (Service, error) {
	transactionService := NewTransactionService(db)
	openLibraryService := NewOpenLibraryService(config)
	schedulerService := NewSchedulerService()

	var historyStore HistoryStore = NewMemoryHistoryStore()
	if db.Cache.Session != nil {
		historyStore = NewCacheHistoryStore(db.Cache.Session)
	}

	return Service{
		OpenLibrary: openLibraryService,
		Transaction: transactionService,
		Scheduler:   schedulerService,
		History:     historyStore,
	}, nil
}
