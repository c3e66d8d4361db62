package notify

import (
	"context"

	"go.uber.org/zap"

	"restaurant-booking/internal/domain"
)

// LogNotifier records confirmations in the log. Used when no broker is
// configured.
type LogNotifier struct{ Log *zap.Logger }

func (n LogNotifier) SendConfirmation(_ context.Context, r *domain.Reservation) error {
	ev := NewReservationCreated(r)
	n.Log.Info("reservation confirmation",
		zap.Uint("reservation_id", ev.ReservationID),
		zap.String("email", ev.Email),
		zap.Uint("table_id", ev.TableID),
		zap.String("date", ev.Date),
		zap.String("time", ev.Time),
		zap.Int("people", ev.People),
	)
	return nil
}
