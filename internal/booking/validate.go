package booking

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

const (
	maxNameLength         = 255
	maxRequirementsLength = 1000
	maxNotesLength        = 1000
	minPhoneDigits        = 8
	maxPhoneDigits        = 15
)

// Input is a booking request as submitted by a parent. Adults is a pointer so that
// an omitted count can be told apart from zero.
type Input struct {
	TourDate            string `json:"tourDate"`
	TourTime            string `json:"tourTime"`
	ParentName          string `json:"parentName"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Adults              *int   `json:"adults"`
	Children            int    `json:"children"`
	ChildName           string `json:"childName"`
	YearLevel           string `json:"yearLevel"`
	SpecialRequirements string `json:"specialRequirements"`
}

// request is a validated and normalized Input.
type request struct {
	date                domain.Date
	time                string
	parentName          string
	email               string
	phone               string
	adults              int
	children            int
	childName           string
	yearLevel           string
	specialRequirements string
}

func (req *request) booking() *domain.Booking {
	return &domain.Booking{
		TourDate:            req.date,
		TourTime:            req.time,
		ParentName:          req.parentName,
		Email:               req.email,
		Phone:               req.phone,
		Adults:              int32(req.adults),
		Children:            int32(req.children),
		ChildName:           req.childName,
		YearLevel:           req.yearLevel,
		SpecialRequirements: req.specialRequirements,
		Status:              domain.BookingStatusConfirmed,
	}
}

func validateInput(v *validator.Validate, policy domain.BookingPolicy, in Input) (*request, error) {
	required := []struct {
		field string
		value string
	}{
		{"tour_date", in.TourDate},
		{"tour_time", in.TourTime},
		{"parent_name", in.ParentName},
		{"email", in.Email},
		{"phone", in.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, invalid(CodeMissingField, f.field, "Required field missing: %s", f.field)
		}
	}
	if in.Adults == nil {
		return nil, invalid(CodeMissingField, "adults", "Required field missing: %s", "adults")
	}

	d, err := domain.ParseDate(strings.TrimSpace(in.TourDate))
	if err != nil {
		return nil, invalid(CodeInvalidInput, "tour_date", "Please choose a valid tour date.")
	}
	tod, err := domain.ParseTimeOfDay(strings.TrimSpace(in.TourTime))
	if err != nil {
		return nil, invalid(CodeInvalidInput, "tour_time", "Please choose a valid tour time.")
	}
	if *in.Adults < 0 {
		return nil, invalid(CodeInvalidInput, "adults", "The number of adults cannot be negative.")
	}
	if in.Children < 0 {
		return nil, invalid(CodeInvalidInput, "children", "The number of children cannot be negative.")
	}

	req := &request{
		date:                d,
		time:                tod,
		parentName:          truncate(in.ParentName, maxNameLength),
		email:               strings.TrimSpace(in.Email),
		phone:               SanitizePhone(in.Phone),
		adults:              *in.Adults,
		children:            in.Children,
		childName:           truncate(in.ChildName, maxNameLength),
		yearLevel:           truncate(in.YearLevel, maxNameLength),
		specialRequirements: truncate(in.SpecialRequirements, maxRequirementsLength),
	}

	if req.parentName == "" {
		return nil, invalid(CodeMissingField, "parent_name", "Required field missing: %s", "parent_name")
	}
	if err := v.Var(req.email, "required,email,max=255"); err != nil {
		return nil, invalid(CodeInvalidEmail, "email", "Please enter a valid email address.")
	}
	if !ValidPhone(req.phone) {
		return nil, invalid(CodeInvalidPhone, "phone", "Please enter a valid phone number.")
	}

	size := req.adults + req.children
	if size < policy.MinGroupSize {
		return nil, invalid(CodeInvalidGroupSize, "adults", "Group size must be at least %d.", policy.MinGroupSize)
	}
	if size > policy.MaxGroupSize {
		return nil, invalid(CodeInvalidGroupSize, "adults", "Group size cannot exceed %d people.", policy.MaxGroupSize)
	}

	return req, nil
}

// SanitizePhone keeps digits and '+'.
func SanitizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func ValidPhone(phone string) bool {
	digits := 0
	for _, r := range SanitizePhone(phone) {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}

// truncate trims s and cuts it to at most n characters.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
