package config

const (
	defaultLogDir               = "~/.local/share/tunesort/logs"
	defaultLogRetentionDays     = 30
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultOracleProvider       = ProviderOpenAI
	defaultOpenAIBaseURL        = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel          = "gpt-4-turbo"
	defaultGeminiModel          = "gemini-2.5-flash"
	defaultOracleReferer        = "https://github.com/tunesort/tunesort"
	defaultOracleTitle          = "tunesort"
	defaultOracleTimeoutSeconds = 120
	defaultIntervalSeconds      = 60
	defaultBatchSize            = 50
	defaultParseMode            = ParseModeStrict
)

// Oracle providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Response parse modes.
const (
	ParseModeStrict  = "strict"
	ParseModeLenient = "lenient"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Oracle: Oracle{
			Provider:       defaultOracleProvider,
			Referer:        defaultOracleReferer,
			Title:          defaultOracleTitle,
			TimeoutSeconds: defaultOracleTimeoutSeconds,
		},
		Sorter: Sorter{
			IntervalSeconds: defaultIntervalSeconds,
			BatchSize:       defaultBatchSize,
			ParseMode:       defaultParseMode,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
