package config

const (
	defaultDataDir               = "~/.local/share/marquee"
	defaultLogDir                = "~/.local/share/marquee/logs"
	defaultTMDBBaseURL           = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL      = "https://image.tmdb.org/t/p"
	defaultTMDBLanguage          = "en-US"
	defaultTMDBDelayMS           = 250
	defaultIMDBBaseURL           = "https://v3.sg.media-imdb.com"
	defaultIMDBDelayMS           = 500
	defaultFallbackDelayMS       = 1000
	defaultFallbackUserAgent     = "marquee/1.0 (+https://github.com/marquee)"
	defaultConcurrency           = 5
	defaultMaxAttempts           = 3
	defaultRequestTimeoutSeconds = 15
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// defaultPreferredLanguages lists image languages from most to least desirable.
// The empty entry stands for untagged images, which are frequently textless
// artwork usable for any audience.
func defaultPreferredLanguages() []string {
	return []string{"en", "hi", "ta", "te", "ml", "kn", "bn", "mr", "pa", "gu", ""}
}

// defaultAvoidLanguages lists image languages demoted behind every preferred
// or untagged candidate.
func defaultAvoidLanguages() []string {
	return []string{"ko", "ja", "zh", "th", "vi", "id", "ru", "fr", "de", "es", "pt", "it"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:      defaultTMDBBaseURL,
			ImageBaseURL: defaultTMDBImageBaseURL,
			Language:     defaultTMDBLanguage,
			DelayMS:      defaultTMDBDelayMS,
		},
		IMDB: IMDB{
			Enabled: true,
			BaseURL: defaultIMDBBaseURL,
			DelayMS: defaultIMDBDelayMS,
		},
		Fallback: Fallback{
			Enabled:   false,
			UserAgent: defaultFallbackUserAgent,
			DelayMS:   defaultFallbackDelayMS,
		},
		Enrichment: Enrichment{
			Concurrency:           defaultConcurrency,
			MaxAttempts:           defaultMaxAttempts,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Images: Images{
			PreferredLanguages: defaultPreferredLanguages(),
			AvoidLanguages:     defaultAvoidLanguages(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
