package booking

import (
	"context"
	"errors"

	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

// Collisions are rare with 36^6 references; a long run of them means the
// generator is broken, not unlucky.
const maxReferenceAttempts = 20

var errReferenceExhausted = errors.New("could not generate a unique booking reference")

// ErrReferenceTaken is returned by SlotTx.InsertBooking when another booking
// committed the same reference first. The transaction stays usable.
var ErrReferenceTaken = errors.New("booking reference already taken")

type referenceInserter interface {
	BookingReferenceExists(ctx context.Context, reference string) (bool, error)
	InsertBooking(ctx context.Context, b *domain.Booking) error
}

// insertWithReference draws references for b until one is free and inserted.
// The existence check only sees committed rows, so a create for another slot
// can still win the same reference between the check and the insert.
func (s *Service) insertWithReference(ctx context.Context, prefix string, tx referenceInserter, b *domain.Booking) error {
	for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
		reference := prefix + "-" + s.newSuffix()

		exists, err := tx.BookingReferenceExists(ctx, reference)
		if err != nil {
			return err
		}
		if exists {
			s.logger.Warn("booking reference collision", "reference", reference, "attempt", attempt)
			continue
		}

		b.Reference = reference
		err = tx.InsertBooking(ctx, b)
		if errors.Is(err, ErrReferenceTaken) {
			s.logger.Warn("booking reference taken on insert", "reference", reference, "attempt", attempt)
			b.Reference = ""
			continue
		}
		return err
	}
	return errReferenceExhausted
}
