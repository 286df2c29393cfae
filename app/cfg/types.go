package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Marker storage
	RedisAddr string

	// Application configuration
	SourcesDir        string
	Port              string
	WorkerCount       int
	SchedulerInterval int

	// Collaborator endpoints and shared secrets
	IngestURL     string
	IngestSecret  string
	MatcherURL    string
	MatcherSecret string
	WebhookSecret string

	// Detail fetching
	ProxyURL         string
	DetailUserAgent  string
	MinContentLength int

	// Poller behavior
	PacingInterval int
	ColdStartLimit int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
