package handler

type ContextKey string

var (
	SubCtxKey       ContextKey = "sub"
	RequestIDCtxKey ContextKey = "requestID"
	MyInfoCtx       ContextKey = "myInfo"
	ScheduleIDCtx   ContextKey = "scheduleID"
)
