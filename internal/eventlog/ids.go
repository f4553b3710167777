package eventlog

// EventID is a numeric event identifier. The thousands digit encodes the
// verbosity band an event belongs to.
type EventID int

// Level 1: configuration and errors.
const (
	License             EventID = 0
	ServiceStart        EventID = 1001
	ServiceStop         EventID = 1002
	ConfigLoaded        EventID = 1003
	GenericError        EventID = 1050
	ConfigProcessedFail EventID = 1311
	ConfigFailedFail    EventID = 1312
	ConfigUsersFail     EventID = 1313
	ConfigClientFail    EventID = 1314
	ConfigPrintFail     EventID = 1315
	ConfigIntervalFail  EventID = 1316
	ConfigLevelFail     EventID = 1317
	FailedBacklog       EventID = 1411
	ProcessedEmpty      EventID = 1412
	UsersFileDeleted    EventID = 1421
	UsersFileCritical   EventID = 1422
	ServiceQueryFail    EventID = 1441
	WatchSetupFail      EventID = 1511
)

// Level 2: warnings.
const (
	GenericWarn     EventID = 2060
	FolderUpdated   EventID = 2411
	UsersFileStale  EventID = 2421
	UsersUpdated    EventID = 2422
	ServiceNotReady EventID = 2441
	WatchFallback   EventID = 2511
)

// Level 3: in-depth logging.
const (
	ConfigSummary EventID = 3300
	ConfigVerify  EventID = 3310
	AttachPollers EventID = 3400
	LoggerStarted EventID = 3800
	SchedulerStop EventID = 3900
)

// Level 4: debug.
const (
	GenericInfo    EventID = 4000
	UpdateDir      EventID = 4410
	UpdateFile     EventID = 4420
	UpdateService  EventID = 4440
	HookWatch      EventID = 4510
	NotifyReceived EventID = 4610
	WatchAdded     EventID = 4710
	LevelChanged   EventID = 4810
)

// Level 5: development.
const (
	ConfigDebug        EventID = 5310
	ConfigVerifyDebug  EventID = 5320
	UpdateDirDebug     EventID = 5410
	UpdateServiceDebug EventID = 5440
	HookWatchDebug     EventID = 5500
	CallbackDebug      EventID = 5600
	WatchAddDebug      EventID = 5710
	CacheExpiredDebug  EventID = 5730
)
