package blocklog

const (
	emptyString = ""

	// logsSubdirName is always joined onto the resolved base directory so
	// log files never mix with application data.
	logsSubdirName = "_logs"
	logFileName    = "logs.log"

	// Rotation policy is fixed rather than runtime-negotiable so
	// operational behavior stays predictable across deployments.
	logFileMaxBackups = 14

	defaultTimeFormat = "2006-01-02 15:04:05"
	dayFormat         = "2006-01-02"

	loggerFieldName = "logger"

	unrepresentable = "<unrepresentable>"
	noneMarker      = "<none>"
)

// Recognized event field keys. Anything else on an event is preserved but
// ignored by the formatter.
const (
	fieldStatus   = "status"
	fieldUser     = "user"
	fieldAuthInfo = "auth_info"
	fieldDetails  = "details"
	fieldRequest  = "request"
	fieldResponse = "response"
	fieldObjects  = "objects"
)

// environmentAliases are tried in order when deriving the default
// verbosity from the ambient environment.
var environmentAliases = []string{"PROJECT_ENVIRONMENT", "ENVIRONMENT"}

const (
	errMsgNilManager      = "Manager is nil."
	errMsgEmptyTarget     = "Target logger name is empty."
	errMsgEmptyIdentifier = "Formatter identifier is empty."
	errMsgNilOptions      = "Options is nil."
	errMsgOptionsInvalid  = "Setup options are invalid."
	errMsgOptionsRead     = "Failed to read options file."
	errMsgOptionsParse    = "Failed to parse options file."
	errMsgFileSink        = "Failed to construct the rotating file sink."
	errMsgLogDirCreate    = "Failed to create the log directory."
)
