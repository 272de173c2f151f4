// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -destination=catalog_mock.go -package=mocks github.com/ammerola/fieldstock-be/internal/core/ports ProductCatalog,CenterDirectory
//go:generate mockgen -destination=cache_mock.go -package=mocks github.com/ammerola/fieldstock-be/internal/core/ports CacheRepository,Lock,Locker
//go:generate mockgen -destination=tasks_mock.go -package=mocks github.com/ammerola/fieldstock-be/internal/core/ports TaskQueue,ExportStorage
//go:generate mockgen -destination=database_mock.go -package=mocks github.com/ammerola/fieldstock-be/internal/core/ports Database
//go:generate mockgen -destination=stock_service_mock.go -package=mocks github.com/ammerola/fieldstock-be/internal/core/ports StockUsageService,RepairService,ReportingService
