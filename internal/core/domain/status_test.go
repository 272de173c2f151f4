package domain_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
)

func TestDeriveOverallStatus(t *testing.T) {
	tests := []struct {
		name   string
		counts domain.StatusCounts
		want   domain.RepairStatus
	}{
		{
			name:   "damaged_and_under_repair_is_partial",
			counts: domain.StatusCounts{Total: 3, Damaged: 1, UnderRepair: 2},
			want:   domain.RepairStatusPartiallyRepaired,
		},
		{
			name:   "damaged_only",
			counts: domain.StatusCounts{Total: 2, Damaged: 2},
			want:   domain.RepairStatusDamaged,
		},
		{
			name:   "damaged_with_repaired_is_damaged",
			counts: domain.StatusCounts{Total: 2, Damaged: 1, Repaired: 1},
			want:   domain.RepairStatusDamaged,
		},
		{
			name:   "under_repair_only",
			counts: domain.StatusCounts{Total: 2, UnderRepair: 2},
			want:   domain.RepairStatusUnderRepair,
		},
		{
			name:   "under_repair_with_outcomes_is_under_repair",
			counts: domain.StatusCounts{Total: 3, UnderRepair: 1, Repaired: 1, Irreparable: 1},
			want:   domain.RepairStatusUnderRepair,
		},
		{
			name:   "all_repaired",
			counts: domain.StatusCounts{Total: 2, Repaired: 2},
			want:   domain.RepairStatusRepaired,
		},
		{
			name:   "all_irreparable",
			counts: domain.StatusCounts{Total: 2, Irreparable: 2},
			want:   domain.RepairStatusIrreparable,
		},
		{
			name:   "mixed_outcomes",
			counts: domain.StatusCounts{Total: 2, Repaired: 1, Irreparable: 1},
			want:   domain.RepairStatusPartiallyRepaired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.DeriveOverallStatus(tt.counts))
		})
	}
}

func TestDeriveOverallStatus_OrderIndependent(t *testing.T) {
	statuses := []domain.SerialStatus{
		domain.SerialDamaged, domain.SerialUnderRepair, domain.SerialRepaired,
		domain.SerialIrreparable, domain.SerialTransferred, domain.SerialRepaired,
	}
	units := make([]domain.SerialUnit, len(statuses))
	for i, s := range statuses {
		units[i] = domain.SerialUnit{SerialNumber: string(rune('A' + i)), Status: s, Quantity: 1}
	}
	want := domain.DeriveOverallStatus(domain.CountSerialStatuses(units))

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]domain.SerialUnit(nil), units...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, domain.DeriveOverallStatus(domain.CountSerialStatuses(shuffled)))
	}
}

func TestDeriveTransferStatus(t *testing.T) {
	t.Run("returned_when_every_repaired_unit_left", func(t *testing.T) {
		c := domain.StatusCounts{Total: 2, Repaired: 1, Irreparable: 1}
		assert.Equal(t, domain.RepairStatusReturned, domain.DeriveTransferStatus(c, 1))
	})

	t.Run("precedence_while_repaired_units_wait", func(t *testing.T) {
		c := domain.StatusCounts{Total: 3, Repaired: 2, Irreparable: 1}
		assert.Equal(t, domain.RepairStatusPartiallyRepaired, domain.DeriveTransferStatus(c, 1))
	})

	t.Run("precedence_while_under_repair", func(t *testing.T) {
		c := domain.StatusCounts{Total: 2, UnderRepair: 1, Repaired: 1}
		assert.Equal(t, domain.RepairStatusUnderRepair, domain.DeriveTransferStatus(c, 1))
	})
}

func TestCanAdvance(t *testing.T) {
	assert.True(t, domain.CanAdvance(domain.SerialDamaged, domain.SerialUnderRepair))
	assert.True(t, domain.CanAdvance(domain.SerialUnderRepair, domain.SerialRepaired))
	assert.True(t, domain.CanAdvance(domain.SerialUnderRepair, domain.SerialIrreparable))
	assert.True(t, domain.CanAdvance(domain.SerialRepaired, domain.SerialTransferred))

	assert.False(t, domain.CanAdvance(domain.SerialUnderRepair, domain.SerialDamaged))
	assert.False(t, domain.CanAdvance(domain.SerialRepaired, domain.SerialUnderRepair))
	assert.False(t, domain.CanAdvance(domain.SerialIrreparable, domain.SerialTransferred))
}
