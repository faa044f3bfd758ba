// Package seed fills a development database with tour times, holiday periods and
// bookings made through the regular booking path.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/booking"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/utils"
)

type Repository interface {
	CreateScheduleTemplate(ctx context.Context, st *domain.ScheduleTemplate) error
	CreateExclusionPeriod(ctx context.Context, ep *domain.ExclusionPeriod) error
	CreateBlackoutDate(ctx context.Context, bd *domain.BlackoutDate) error
}

type Availability interface {
	AvailableDates(ctx context.Context, policy domain.BookingPolicy) ([]domain.AvailableDate, error)
}

type BookingCreator interface {
	Create(ctx context.Context, policy domain.BookingPolicy, in booking.Input) (*domain.Booking, error)
}

// weeklyTours are the school's usual tour times, keyed by weekday.
var weeklyTours = map[time.Weekday][]struct {
	time      string
	maxGroups int32
}{
	time.Monday:    {{"09:00:00", 3}, {"11:00:00", 2}},
	time.Tuesday:   {{"09:00:00", 3}},
	time.Wednesday: {{"09:00:00", 3}, {"14:00:00", 2}},
	time.Thursday:  {{"09:00:00", 3}},
	time.Friday:    {{"10:00:00", 2}},
}

var yearLevels = []string{"Kindergarten", "Year 1", "Year 3", "Year 5", "Year 7", "Year 9", "Year 11"}

// Templates inserts the weekly tour times and returns how many were stored.
func Templates(ctx context.Context, r Repository) int {
	cnt := 0
	for day := time.Sunday; day <= time.Saturday; day++ {
		for _, tour := range weeklyTours[day] {
			dow := int32(day)
			st := &domain.ScheduleTemplate{
				Kind:      domain.TemplateKindRecurring,
				DayOfWeek: &dow,
				TimeOfDay: tour.time,
				MaxGroups: tour.maxGroups,
				IsActive:  true,
			}
			if err := r.CreateScheduleTemplate(ctx, st); err != nil {
				slog.Error("failed to insert schedule template", "day", day, "time", tour.time, "error", err)
				continue
			}
			cnt++
		}
	}
	return cnt
}

// Exclusions inserts the yearly holiday periods. The year only anchors the dates;
// recurring periods apply every year.
func Exclusions(ctx context.Context, r Repository, year int) int {
	periods := []*domain.ExclusionPeriod{
		{
			Name:            "Summer Holidays",
			StartDate:       domain.NewDate(year, time.December, 20),
			EndDate:         domain.NewDate(year, time.January, 27),
			RecurringYearly: true,
		},
		{
			Name:            "Winter Break",
			StartDate:       domain.NewDate(year, time.July, 1),
			EndDate:         domain.NewDate(year, time.July, 14),
			RecurringYearly: true,
		},
	}

	cnt := 0
	for _, ep := range periods {
		if err := r.CreateExclusionPeriod(ctx, ep); err != nil {
			slog.Error("failed to insert exclusion period", "name", ep.Name, "error", err)
			continue
		}
		cnt++
	}
	return cnt
}

// ImportBlackoutDates reads "date,reason" rows with a header line. Dates that are
// already blacked out are skipped.
func ImportBlackoutDates(ctx context.Context, r Repository, src io.Reader) (int, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}

	cnt := 0
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return cnt, err
		}

		d, err := domain.ParseDate(strings.TrimSpace(row[0]))
		if err != nil {
			return cnt, fmt.Errorf("line %d: %w", line, err)
		}
		bd := &domain.BlackoutDate{Date: d}
		if len(row) > 1 {
			bd.Reason = strings.TrimSpace(row[1])
		}

		if err := r.CreateBlackoutDate(ctx, bd); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "blackout_dates_date_key" {
				continue
			}
			return cnt, fmt.Errorf("line %d: %w", line, err)
		}
		cnt++
	}
	return cnt, nil
}

// Bookings books up to n random open slots and returns how many bookings were made.
func Bookings(ctx context.Context, avail Availability, bookings BookingCreator, policy domain.BookingPolicy, n int, emailDomain string) (int, error) {
	dates, err := avail.AvailableDates(ctx, policy)
	if err != nil {
		return 0, err
	}

	var open []struct {
		date domain.Date
		time string
	}
	for _, ad := range dates {
		for _, slot := range ad.Slots {
			if slot.Available {
				open = append(open, struct {
					date domain.Date
					time string
				}{ad.Date, slot.Time})
			}
		}
	}
	if len(open) == 0 {
		return 0, nil
	}

	cnt := 0
	for i := 0; i < n; i++ {
		slot := open[rand.Intn(len(open))]
		parentName := utils.GenerateRandomChineseName()
		adults := min(rand.Intn(2)+1, policy.MaxGroupSize)
		children := min(rand.Intn(3), policy.MaxGroupSize-adults)

		in := booking.Input{
			TourDate:   slot.date.String(),
			TourTime:   slot.time,
			ParentName: utils.RomanizeChineseName(parentName),
			Email:      utils.GenerateEmailFromChineseName(parentName, emailDomain),
			Phone:      utils.GenerateRandomPhone(),
			Adults:     &adults,
			Children:   children,
			YearLevel:  yearLevels[rand.Intn(len(yearLevels))],
		}
		if children > 0 {
			in.ChildName = utils.RomanizeChineseName(childOf(parentName))
		}

		// full slots are expected once the seed has run a while
		if _, err := bookings.Create(ctx, policy, in); err != nil {
			slog.Warn("booking skipped", "date", in.TourDate, "time", in.TourTime, "reason", err.Error())
			continue
		}
		cnt++
	}
	return cnt, nil
}

// childOf gives a random name with the parent's surname.
func childOf(parentName string) string {
	surname := []rune(parentName)[:1]
	given := []rune(utils.GenerateRandomChineseName())[1:]
	return string(surname) + string(given)
}
