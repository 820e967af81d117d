package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used by the HTTP handlers, the CLI and the scheduler.
type ServiceContainer struct {
	Currency     CurrencySvcFacade
	RateResolver RateResolverSvc
	RateUpdater  RateUpdaterSvc
	Ledger       LedgerSvcFacade
	User         UserSvcFacade
	TokenService TokenSvcFacade
}
