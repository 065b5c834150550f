package services

import (
	"errors"
	"testing"

	"doorlist/internal/domain"

	"github.com/stretchr/testify/require"
)

func tierWith(price, total, sold int, maxPerContact *int) *domain.TicketTier {
	return &domain.TicketTier{
		ID:            "tier-1",
		EventID:       "ev-1",
		Name:          "General",
		PriceCents:    price,
		QuantityTotal: total,
		QuantitySold:  sold,
		MaxPerContact: maxPerContact,
	}
}

func intPtr(v int) *int { return &v }

func TestValidateReservation(t *testing.T) {
	tests := []struct {
		name        string
		tier        *domain.TicketTier
		qty         int
		existing    int
		hasIdentity bool
		path        ReservationPath
		wantReason  string
		wantInvalid bool
	}{
		{
			name: "free tier rsvp accepted",
			tier: tierWith(0, 10, 0, nil),
			qty:  2, path: PathRSVP,
		},
		{
			name: "paid tier via rsvp rejected",
			tier: tierWith(2500, 10, 0, nil),
			qty:  1, path: PathRSVP,
			wantReason: "This tier is not free; use the checkout flow",
		},
		{
			name: "free tier via checkout rejected",
			tier: tierWith(0, 10, 0, nil),
			qty:  1, path: PathCheckout,
			wantReason: "This tier is free; use the RSVP flow",
		},
		{
			name: "walk-in ignores price class",
			tier: tierWith(2500, 10, 0, nil),
			qty:  1, path: PathWalkIn,
		},
		{
			name: "sold out",
			tier: tierWith(0, 10, 10, nil),
			qty:  1, path: PathRSVP,
			wantReason: "Sold out",
		},
		{
			name: "one remaining, two requested",
			tier: tierWith(0, 10, 9, nil),
			qty:  2, path: PathRSVP,
			wantReason: "Only 1 ticket remaining",
		},
		{
			name: "three remaining, five requested",
			tier: tierWith(0, 10, 7, nil),
			qty:  5, path: PathRSVP,
			wantReason: "Only 3 tickets remaining",
		},
		{
			name: "exactly the remaining quantity accepted",
			tier: tierWith(0, 10, 9, nil),
			qty:  1, path: PathRSVP,
		},
		{
			name: "per-guest cap reached",
			tier: tierWith(0, 10, 2, intPtr(2)),
			qty:  1, existing: 2, hasIdentity: true, path: PathRSVP,
			wantReason: "Ticket limit of 2 per guest reached, 0 more allowed",
		},
		{
			name: "per-guest cap partially available",
			tier: tierWith(0, 10, 1, intPtr(2)),
			qty:  2, existing: 1, hasIdentity: true, path: PathRSVP,
			wantReason: "Only 1 more ticket allowed for this guest",
		},
		{
			name: "per-guest cap with several still allowed",
			tier: tierWith(0, 10, 1, intPtr(4)),
			qty:  3, existing: 2, hasIdentity: true, path: PathRSVP,
			wantReason: "Only 2 more tickets allowed for this guest",
		},
		{
			name: "per-guest cap within allowance",
			tier: tierWith(0, 10, 1, intPtr(2)),
			qty:  1, existing: 1, hasIdentity: true, path: PathRSVP,
		},
		{
			name: "cap skipped without guest identity",
			tier: tierWith(0, 10, 2, intPtr(2)),
			qty:  3, existing: 0, hasIdentity: false, path: PathWalkIn,
		},
		{
			name: "capacity checked before cap",
			tier: tierWith(0, 10, 10, intPtr(2)),
			qty:  1, existing: 2, hasIdentity: true, path: PathRSVP,
			wantReason: "Sold out",
		},
		{
			name: "zero quantity is invalid input",
			tier: tierWith(0, 10, 0, nil),
			qty:  0, path: PathRSVP,
			wantInvalid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReservation(tt.tier, tt.qty, tt.existing, tt.hasIdentity, tt.path)
			switch {
			case tt.wantInvalid:
				require.True(t, errors.Is(err, domain.ErrInvalidInput))
			case tt.wantReason != "":
				rej, ok := domain.IsReservationRejection(err)
				require.True(t, ok, "expected a reservation rejection, got %v", err)
				require.Equal(t, tt.wantReason, rej.Reason)
			default:
				require.NoError(t, err)
			}
		})
	}
}
