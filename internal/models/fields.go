package models

// Field names understood by metrics publishers.
const (
	FieldFailedBacklog       = "failed_backlog"
	FieldProcessedBacklog    = "processed_backlog"
	FieldProcessedAgeMinutes = "processed_age_minutes"
	FieldUserFileAgeMinutes  = "user_file_age_minutes"
	FieldClientServiceStatus = "client_service_status"
	FieldPrintServiceStatus  = "print_service_status"
)

// DefaultUserFileAge is reported until the users file has been evaluated once.
const DefaultUserFileAge = 1440

// IntFields lists the integer fields in publishing order.
var IntFields = []string{
	FieldFailedBacklog,
	FieldProcessedBacklog,
	FieldProcessedAgeMinutes,
	FieldUserFileAgeMinutes,
}

// StringFields lists the string fields in publishing order.
var StringFields = []string{
	FieldClientServiceStatus,
	FieldPrintServiceStatus,
}

// Fields is a point-in-time copy of every published value.
type Fields struct {
	Ints    map[string]int    `json:"ints"`
	Strings map[string]string `json:"strings"`
}

// DefaultFields returns the values reported before any evaluation ran.
func DefaultFields() Fields {
	f := Fields{
		Ints:    make(map[string]int, len(IntFields)),
		Strings: make(map[string]string, len(StringFields)),
	}
	for _, name := range IntFields {
		f.Ints[name] = 0
	}
	f.Ints[FieldUserFileAgeMinutes] = DefaultUserFileAge
	for _, name := range StringFields {
		f.Strings[name] = ""
	}
	return f
}
