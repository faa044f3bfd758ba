package handler

type ContextKey string

var (
	RoleCtxKey          ContextKey = "role"
	SubCtxKey           ContextKey = "sub"
	ScheduleTemplateCtx ContextKey = "scheduleTemplate"
	BlackoutDateCtx     ContextKey = "blackoutDate"
	ExclusionPeriodCtx  ContextKey = "exclusionPeriod"
	BookingIDCtx        ContextKey = "bookingID"
)
