package domain

const (
	MailTypeScheduleUpdated  = "schedule_updated"
	MailTypeScheduleDeleted  = "schedule_deleted"
	MailTypeScheduleReminder = "schedule_reminder"
)

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ScheduleMailData struct {
	FullName   string `json:"fullName"`
	OperatorID int64  `json:"operatorID"`
	ScheduleID int64  `json:"scheduleID"`
	Year       int32  `json:"year"`
	Month      int32  `json:"month"`
	WeekNumber int32  `json:"weekNumber"`
}

type ReminderMailData struct {
	FullName   string `json:"fullName"`
	Year       int32  `json:"year"`
	Month      int32  `json:"month"`
	WeekNumber int32  `json:"weekNumber"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
}
