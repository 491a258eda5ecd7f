package schema

// Custom string types for type safety.
type (
	// Timescale represents the time axis of a dataset.
	Timescale string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run tracking.
	DatabaseBackend string

	// MissingPolicy represents how absent or non-numeric cells are treated during extraction.
	MissingPolicy string
)

// All timescales supported.
const (
	DayScale      Timescale = "day" // default
	WeekScale     Timescale = "week"
	YearScale     Timescale = "year"
	LifetimeScale Timescale = "lifetime"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All missing-cell policies supported.
const (
	MissingZero   MissingPolicy = "zero" // default
	MissingStrict MissingPolicy = "strict"
)

// KeyDelimiter separates the demographic from the activity in a column name.
const KeyDelimiter = ":"

// AggregateDemographic is the demographic that holds the whole population.
const AggregateDemographic = "all"

// AllTimescales returns the timescales in display order.
var AllTimescales = []Timescale{DayScale, WeekScale, YearScale, LifetimeScale}

// ValidTimescales lists all valid timescales.
var ValidTimescales = map[Timescale]struct{}{
	DayScale:      {},
	WeekScale:     {},
	YearScale:     {},
	LifetimeScale: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidMissingPolicies lists all valid missing-cell policies.
var ValidMissingPolicies = map[MissingPolicy]struct{}{
	MissingZero:   {},
	MissingStrict: {},
}

// DefaultDatasetFile returns the conventional file name of a timescale's dataset.
func DefaultDatasetFile(ts Timescale) string {
	switch ts {
	case WeekScale:
		return "week.csv"
	case YearScale:
		return "year.csv"
	case LifetimeScale:
		return "age.csv"
	default: // DayScale
		return "day.csv"
	}
}
