package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/models"
)

// DefaultIntervalMinutes replaces a missing or non-positive polling interval.
const DefaultIntervalMinutes = 10

// Target identifiers. They double as the parameter keys that configure them.
const (
	TargetProcessed = KeyProcessedDirectory
	TargetFailed    = KeyFailedDirectory
	TargetUsersFile = KeyUsersFilePath
	TargetClient    = KeyClientServiceName
	TargetPrint     = KeyPrintServiceName
)

// Directory is a verified directory target.
type Directory struct {
	Target models.Target
	// Name is the directory's own name, compared against the bucket names.
	Name string
}

// File is a verified freshness target.
type File struct {
	Target           models.Target
	ThresholdMinutes int
}

// Service is a verified service target.
type Service struct {
	Target models.Target
}

// Buckets carries the names that give a directory its meaning.
type Buckets struct {
	Failed    string
	Processed string
}

// Settings is the immutable, pre-validated configuration handed to the
// scheduler. Nil targets were dropped during verification.
type Settings struct {
	Processed *Directory
	Failed    *Directory
	UsersFile *File
	Client    *Service
	Print     *Service

	Buckets         Buckets
	IntervalMinutes float64
	LoggingLevel    int
	// Dropped lists metric fields whose target failed verification.
	Dropped []string
}

// PollInterval returns the interval as a duration.
func (s Settings) PollInterval() time.Duration {
	return time.Duration(s.IntervalMinutes * float64(time.Minute))
}

// Targets lists every verified target in registration order.
func (s Settings) Targets() []models.Target {
	var out []models.Target
	for _, svc := range []*Service{s.Print, s.Client} {
		if svc != nil {
			out = append(out, svc.Target)
		}
	}
	for _, dir := range []*Directory{s.Processed, s.Failed} {
		if dir != nil {
			out = append(out, dir.Target)
		}
	}
	if s.UsersFile != nil {
		out = append(out, s.UsersFile.Target)
	}
	return out
}

// LogValues records the raw parameter store.
func LogValues(values map[string]string, logger *eventlog.Logger) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := []string{"Configuration", "----------------"}
	for _, k := range keys {
		logger.Info(eventlog.ConfigDebug, fmt.Sprintf("[ i ] %s=%s", k, values[k]))
		lines = append(lines, fmt.Sprintf("[ i ] %s = %s", k, values[k]))
	}
	lines = append(lines, "[+] Configuration loaded")
	logger.List(eventlog.ConfigSummary, models.SeverityInfo, lines)
}

// Verify validates the parameter store. Invalid entries drop their target and
// are logged; verification itself never fails.
func Verify(values map[string]string, logger *eventlog.Logger) Settings {
	v := verifier{values: values, logger: logger}
	v.lines = []string{"Config Verification", "----------------"}

	s := Settings{}
	s.Processed = v.directory(KeyProcessedDirectory, "Processed directory", models.FieldProcessedBacklog, eventlog.ConfigProcessedFail, &s.Dropped)
	s.Failed = v.directory(KeyFailedDirectory, "Failed directory", models.FieldFailedBacklog, eventlog.ConfigFailedFail, &s.Dropped)
	if s.Processed != nil {
		s.Buckets.Processed = s.Processed.Name
	}
	if s.Failed != nil {
		s.Buckets.Failed = s.Failed.Name
	}
	s.UsersFile = v.usersFile(&s.Dropped)
	s.IntervalMinutes = v.interval()
	s.Client = v.service(KeyClientServiceName, "Client service", models.FieldClientServiceStatus, eventlog.ConfigClientFail, &s.Dropped)
	s.Print = v.service(KeyPrintServiceName, "Print service", models.FieldPrintServiceStatus, eventlog.ConfigPrintFail, &s.Dropped)
	s.LoggingLevel = v.level()

	v.lines = append(v.lines, "[+] Configuration verified")
	logger.Info(eventlog.ConfigDebug, "[+] Configuration verified")
	logger.List(eventlog.ConfigVerify, models.SeverityInfo, v.lines)
	return s
}

type verifier struct {
	values map[string]string
	logger *eventlog.Logger
	lines  []string
}

func (v *verifier) note(line string) {
	v.lines = append(v.lines, line)
	v.logger.Info(eventlog.ConfigVerifyDebug, line)
}

func (v *verifier) fail(key string, id eventlog.EventID, err error) {
	v.lines = append(v.lines,
		fmt.Sprintf("     [ ! ] Unable to add %s", key),
		fmt.Sprintf("     - %v", err),
	)
	v.logger.Trace(id, err, "Unable to add "+key)
}

func (v *verifier) directory(key, name, field string, failID eventlog.EventID, dropped *[]string) *Directory {
	v.note("[ i ] " + key)
	path := strings.TrimSpace(v.values[key])
	if path == "" {
		v.fail(key, failID, fmt.Errorf("config key %s is missing", key))
		*dropped = append(*dropped, field)
		return nil
	}
	if !strings.HasSuffix(path, string(os.PathSeparator)) {
		path += string(os.PathSeparator)
	}
	v.note("     - " + path)
	if _, err := os.ReadDir(path); err != nil {
		v.fail(key, failID, err)
		*dropped = append(*dropped, field)
		return nil
	}
	return &Directory{
		Target: models.Target{
			ID:    key,
			Name:  name,
			Kind:  models.KindDirectory,
			Path:  path,
			Field: field,
		},
		Name: DirectoryName(path),
	}
}

func (v *verifier) usersFile(dropped *[]string) *File {
	v.note("[ i ] " + KeyUsersFilePath)
	path := strings.TrimSpace(v.values[KeyUsersFilePath])
	if path == "" {
		v.fail(KeyUsersFilePath, eventlog.ConfigUsersFail, fmt.Errorf("config key %s is missing", KeyUsersFilePath))
		*dropped = append(*dropped, models.FieldUserFileAgeMinutes)
		return nil
	}
	v.note("     - " + path)
	if _, err := os.Stat(path); err != nil {
		v.fail(KeyUsersFilePath, eventlog.ConfigUsersFail, err)
		*dropped = append(*dropped, models.FieldUserFileAgeMinutes)
		return nil
	}
	threshold, err := strconv.Atoi(strings.TrimSpace(v.values[KeyUsersFileMaxAge]))
	if err != nil || threshold <= 0 {
		if err == nil {
			err = fmt.Errorf("%s must be > 0, got %d", KeyUsersFileMaxAge, threshold)
		}
		v.fail(KeyUsersFileMaxAge, eventlog.ConfigUsersFail, err)
		*dropped = append(*dropped, models.FieldUserFileAgeMinutes)
		return nil
	}
	v.note(fmt.Sprintf("     - Threshold: %d min", threshold))
	return &File{
		Target: models.Target{
			ID:    KeyUsersFilePath,
			Name:  "Users file",
			Kind:  models.KindFile,
			Path:  path,
			Field: models.FieldUserFileAgeMinutes,
		},
		ThresholdMinutes: threshold,
	}
}

func (v *verifier) interval() float64 {
	v.note("[ i ] " + KeyPollingInterval)
	raw := strings.TrimSpace(v.values[KeyPollingInterval])
	interval, err := strconv.ParseFloat(raw, 64)
	if err != nil || interval <= 0 {
		msg := fmt.Sprintf("     [ ! ] Config::%s must be > 0, defaulting to %d minutes. Configured: %q",
			KeyPollingInterval, DefaultIntervalMinutes, raw)
		v.lines = append(v.lines, msg)
		if err == nil {
			err = fmt.Errorf("%s must be > 0", KeyPollingInterval)
		}
		v.logger.Trace(eventlog.ConfigIntervalFail, err, msg)
		return DefaultIntervalMinutes
	}
	v.note(fmt.Sprintf("     - Final Interval: %gmin", interval))
	return interval
}

func (v *verifier) service(key, name, field string, failID eventlog.EventID, dropped *[]string) *Service {
	v.note("[ i ] " + key)
	svc := strings.TrimSpace(v.values[key])
	if svc == "" || strings.ContainsAny(svc, `/\`) {
		v.fail(key, failID, fmt.Errorf("invalid service name %q", svc))
		*dropped = append(*dropped, field)
		return nil
	}
	v.note("     - " + svc)
	return &Service{
		Target: models.Target{
			ID:      key,
			Name:    name,
			Kind:    models.KindService,
			Service: svc,
			Field:   field,
		},
	}
}

func (v *verifier) level() int {
	raw := strings.TrimSpace(v.values[KeyLoggingLevel])
	level, err := strconv.Atoi(raw)
	if err != nil || !eventlog.ValidLevel(level) {
		msg := fmt.Sprintf("[!] Config::%s must be between 1 and 5 or %d, defaulting to %d", KeyLoggingLevel, eventlog.MaxVerbosity, eventlog.DefaultLevel)
		v.logger.Warn(eventlog.ConfigLevelFail, msg)
		v.lines = append(v.lines, msg)
		return eventlog.DefaultLevel
	}
	return level
}

// DirectoryName returns the last element of a directory path, ignoring a
// trailing separator.
func DirectoryName(path string) string {
	return filepath.Base(filepath.Clean(path))
}
