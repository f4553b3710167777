package metrics

import "fsmonitor/internal/models"

// Publisher receives named health fields.
type Publisher interface {
	SetInt(field string, value int)
	SetString(field string, value string)
}

// Multi fans every update out to each publisher in order.
type Multi []Publisher

func (m Multi) SetInt(field string, value int) {
	for _, p := range m {
		p.SetInt(field, value)
	}
}

func (m Multi) SetString(field string, value string) {
	for _, p := range m {
		p.SetString(field, value)
	}
}

// StatusUnknown is published for string fields that cannot be measured.
const StatusUnknown = "Unknown"

// PublishUnknown sets field to its sentinel value.
func PublishUnknown(p Publisher, field string) {
	for _, name := range models.StringFields {
		if name == field {
			p.SetString(field, StatusUnknown)
			return
		}
	}
	p.SetInt(field, models.Unknown)
}

// PublishFields replays every known field of f into p.
func PublishFields(p Publisher, f models.Fields) {
	for _, name := range models.IntFields {
		if v, ok := f.Ints[name]; ok {
			p.SetInt(name, v)
		}
	}
	for _, name := range models.StringFields {
		if v, ok := f.Strings[name]; ok {
			p.SetString(name, v)
		}
	}
}
