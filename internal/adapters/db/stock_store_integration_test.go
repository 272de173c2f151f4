//go:build integration
// +build integration

package db_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/ammerola/fieldstock-be/internal/adapters/db"
	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
	"github.com/ammerola/fieldstock-be/test/helpers"
)

type StockStoreSuite struct {
	suite.Suite
	testDB  *helpers.TestDB
	master  *db.MasterDataRepository
	store   ports.StockStore
	uow     ports.UnitOfWork
	ctx     context.Context
	center  *domain.Center
	repair  *domain.Center
	product *domain.Product
}

func TestStockStoreSuite(t *testing.T) {
	suite.Run(t, new(StockStoreSuite))
}

func (s *StockStoreSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	s.master = db.NewMasterDataRepository(s.testDB.Database, helpers.TestLogger())
	s.store = db.NewStockStore(s.testDB.Database, helpers.TestLogger())
	s.uow = db.NewUnitOfWork(s.testDB.Database, helpers.TestLogger())
	s.ctx = context.Background()
}

func (s *StockStoreSuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)

	s.center = helpers.NewTestCenter(domain.CenterBranch)
	s.repair = helpers.NewTestCenter(domain.CenterRepair)
	s.product = helpers.NewTestProduct(true)
	s.Require().NoError(s.master.UpsertCenter(s.ctx, s.center))
	s.Require().NoError(s.master.UpsertCenter(s.ctx, s.repair))
	s.Require().NoError(s.master.UpsertProduct(s.ctx, s.product))
}

func (s *StockStoreSuite) seedLedger(serials ...string) *domain.StockLedger {
	l := helpers.NewCenterLedger(s.T(), s.center.ID, s.product.ID, len(serials), serials...)
	s.Require().NoError(s.store.Ledgers().Create(s.ctx, l))
	return l
}

// seedFaulty books a damage usage for serials and returns its faulty batch.
func (s *StockStoreSuite) seedFaulty(ledger *domain.StockLedger, serials ...string) *domain.FaultyStockRecord {
	now := time.Now().UTC()
	target, err := domain.NewUsageTarget(domain.EntityDamage, uuid.Nil, s.center.ID)
	s.Require().NoError(err)
	usage, err := domain.NewStockUsage(s.center.ID, s.product.ID, target, len(serials), "cracked", "tech-1", now)
	s.Require().NoError(err)

	picked, err := ledger.ReserveOrConsume(true, len(serials), serials, usage.ID, "tech-1", now)
	s.Require().NoError(err)
	usage.SerialNumbers = picked
	units, err := ledger.MarkDamaged(picked, usage.ID, "lead-1", now)
	s.Require().NoError(err)

	faulty := domain.NewFaultyStockRecord(usage, true, units, now)
	s.Require().NoError(usage.Approve(faulty.ID, "lead-1", "", now))

	s.Require().NoError(s.uow.Execute(s.ctx, func(ctx context.Context, tx ports.StockStore) error {
		if err := tx.Ledgers().Save(ctx, ledger); err != nil {
			return err
		}
		if err := tx.Usages().Create(ctx, usage); err != nil {
			return err
		}
		return tx.Faulty().Create(ctx, faulty)
	}))
	return faulty
}

func (s *StockStoreSuite) TestLedger_RoundTrip() {
	l := s.seedLedger("SN-1", "SN-2")

	got, err := s.store.Ledgers().Get(s.ctx, domain.LedgerCenter, s.center.ID, s.product.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(l.ID, got.ID)
	s.Equal(2, got.AvailableQuantity)
	s.Equal([]string{"SN-1", "SN-2"}, got.AvailableSerials())
	s.NoError(got.CheckBalance())

	missing, err := s.store.Ledgers().Get(s.ctx, domain.LedgerOutlet, s.center.ID, s.product.ID)
	s.NoError(err)
	s.Nil(missing)
}

func (s *StockStoreSuite) TestLedger_StaleSaveIsConcurrentModification() {
	s.seedLedger("SN-1", "SN-2")

	first, err := s.store.Ledgers().Get(s.ctx, domain.LedgerCenter, s.center.ID, s.product.ID)
	s.Require().NoError(err)
	second, err := s.store.Ledgers().Get(s.ctx, domain.LedgerCenter, s.center.ID, s.product.ID)
	s.Require().NoError(err)

	now := time.Now().UTC()
	_, err = first.ReserveOrConsume(true, 1, []string{"SN-1"}, uuid.New(), "a", now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Ledgers().Save(s.ctx, first))
	s.Equal(1, first.Version)

	_, err = second.ReserveOrConsume(true, 1, []string{"SN-1"}, uuid.New(), "b", now)
	s.Require().NoError(err)
	err = s.store.Ledgers().Save(s.ctx, second)
	s.ErrorIs(err, domain.ErrConcurrentModification)

	stored, err := s.store.Ledgers().Get(s.ctx, domain.LedgerCenter, s.center.ID, s.product.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.AvailableQuantity)
	s.Equal(1, stored.ConsumedQuantity)
}

func (s *StockStoreSuite) TestLedger_DuplicateCreateIsConflict() {
	s.seedLedger("SN-1")

	dup := helpers.NewCenterLedger(s.T(), s.center.ID, s.product.ID, 1, "SN-9")
	err := s.store.Ledgers().Create(s.ctx, dup)
	s.ErrorIs(err, domain.ErrConcurrentModification)
}

func (s *StockStoreSuite) TestUnitOfWork_RollsBackOnError() {
	ledger := s.seedLedger("SN-1", "SN-2")
	boom := errors.New("item failed")

	err := s.uow.Execute(s.ctx, func(ctx context.Context, tx ports.StockStore) error {
		locked, err := tx.Ledgers().Get(ctx, domain.LedgerCenter, s.center.ID, s.product.ID)
		if err != nil {
			return err
		}
		if _, err := locked.ReserveOrConsume(true, 2, nil, uuid.New(), "a", time.Now().UTC()); err != nil {
			return err
		}
		if err := tx.Ledgers().Save(ctx, locked); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	stored, err := s.store.Ledgers().Get(s.ctx, domain.LedgerCenter, s.center.ID, s.product.ID)
	s.Require().NoError(err)
	s.Equal(2, stored.AvailableQuantity)
	s.Equal(ledger.Version, stored.Version)
}

func (s *StockStoreSuite) TestFaulty_FindWithDamaged() {
	ledger := s.seedLedger("SN-1", "SN-2", "SN-3")
	older := s.seedFaulty(ledger, "SN-1")
	newer := s.seedFaulty(ledger, "SN-2", "SN-3")

	found, err := s.store.Faulty().FindWithDamaged(s.ctx, s.product.ID, &s.center.ID)
	s.Require().NoError(err)
	s.Require().Len(found, 2)
	s.Equal(older.ID, found[0].ID)
	s.Equal(newer.ID, found[1].ID)
	s.Equal(domain.RepairStatusDamaged, found[1].OverallStatus)
	s.Equal(2, found[1].DamagedQty)

	other := uuid.New()
	none, err := s.store.Faulty().FindWithDamaged(s.ctx, s.product.ID, &other)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StockStoreSuite) TestRepairTransfer_ListAndSummary() {
	ledger := s.seedLedger("SN-1", "SN-2", "SN-3")
	faulty := s.seedFaulty(ledger, "SN-1", "SN-2", "SN-3")
	now := time.Now().UTC()

	var transfers []*domain.RepairTransferRecord
	for _, sn := range []string{"SN-1", "SN-2"} {
		id := uuid.New()
		units, err := faulty.SendToRepair(id, s.repair.ID, []string{sn}, 1, "send", "lead-1", now)
		s.Require().NoError(err)
		transfers = append(transfers, domain.NewRepairTransfer(id, faulty, s.repair.ID, 1, units, "cracked", "send", "lead-1", now))
	}
	_, err := transfers[1].RecordOutcome([]string{"SN-2"}, 1, domain.SerialRepaired, decimal.NewFromInt(12), "fixed", "rc-1", now)
	s.Require().NoError(err)
	s.Require().NoError(faulty.RecordOutcome(transfers[1].ID, []string{"SN-2"}, 1, domain.SerialRepaired, decimal.NewFromInt(12), "fixed", "rc-1", now))

	s.Require().NoError(s.uow.Execute(s.ctx, func(ctx context.Context, tx ports.StockStore) error {
		for _, t := range transfers {
			if err := tx.Repairs().Create(ctx, t); err != nil {
				return err
			}
		}
		return tx.Faulty().Save(ctx, faulty)
	}))

	page, err := s.store.Repairs().List(s.ctx, ports.RepairTransferFilter{
		FromCenterID: &s.center.ID,
		PageParams:   ports.PageParams{Page: 1, PageSize: 1},
	})
	s.Require().NoError(err)
	s.EqualValues(2, page.TotalCount)
	s.Equal(2, page.TotalPages)
	s.Len(page.Items, 1)

	summary, err := s.store.Repairs().StatusSummary(s.ctx, ports.RepairTransferFilter{FromCenterID: &s.center.ID})
	s.Require().NoError(err)
	s.Equal(ports.StatusSummary{Count: 1, TotalQuantity: 1}, summary[domain.RepairStatusUnderRepair])
	s.Equal(ports.StatusSummary{Count: 1, TotalQuantity: 1}, summary[domain.RepairStatusRepaired])

	open, err := s.store.Repairs().FindOpenForOrigin(s.ctx, s.product.ID, s.center.ID)
	s.Require().NoError(err)
	s.Require().NotNil(open)
	s.Equal(transfers[0].ID, open.ID)

	stored, err := s.store.Repairs().GetByID(s.ctx, transfers[1].ID)
	s.Require().NoError(err)
	s.True(stored.TotalCost().Equal(decimal.NewFromInt(12)))
	s.Len(stored.RepairUpdates, 2)
}

func (s *StockStoreSuite) TestUsage_ListAndEntityUsage() {
	s.seedLedger("SN-1")
	now := time.Now().UTC()

	customer := uuid.New()
	target, err := domain.NewUsageTarget(domain.EntityCustomer, customer, s.center.ID)
	s.Require().NoError(err)
	usage, err := domain.NewStockUsage(s.center.ID, s.product.ID, target, 1, "install", "tech-1", now)
	s.Require().NoError(err)
	usage.SerialNumbers = []string{"SN-1"}

	entity := domain.NewEntityStockUsage(target, s.product.ID, now)
	entity.Assign(usage.ID, 1, usage.SerialNumbers, now)

	s.Require().NoError(s.uow.Execute(s.ctx, func(ctx context.Context, tx ports.StockStore) error {
		if err := tx.Usages().Create(ctx, usage); err != nil {
			return err
		}
		return tx.EntityUsage().Create(ctx, entity)
	}))

	got, err := s.store.Usages().GetByID(s.ctx, usage.ID)
	s.Require().NoError(err)
	s.Equal(domain.UsageCompleted, got.Status)
	s.Equal(target, got.Target)
	s.Equal([]string{"SN-1"}, got.SerialNumbers)

	completed := domain.UsageCompleted
	list, err := s.store.Usages().List(s.ctx, ports.UsageFilter{Status: &completed})
	s.Require().NoError(err)
	s.EqualValues(1, list.TotalCount)

	stored, err := s.store.EntityUsage().Get(s.ctx, domain.EntityCustomer, customer, s.product.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.Equal(1, stored.TotalQuantity)
	s.Require().Len(stored.SerialNumbers, 1)
	s.Equal(usage.ID, stored.SerialNumbers[0].UsageReference)
}

func (s *StockStoreSuite) TestMasterData() {
	got, err := s.master.GetProduct(s.ctx, s.product.ID)
	s.Require().NoError(err)
	s.Equal(s.product, got)

	missing, err := s.master.GetCenter(s.ctx, uuid.New())
	s.NoError(err)
	s.Nil(missing)

	reseller := &domain.Reseller{ID: uuid.New(), Name: "Acme", OutletCenterID: s.center.ID, Active: true}
	s.Require().NoError(s.master.UpsertReseller(s.ctx, reseller))
	res, err := s.master.GetReseller(s.ctx, reseller.ID)
	s.Require().NoError(err)
	s.Equal(reseller, res)
}
