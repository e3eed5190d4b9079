package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// DateLayout is the folder naming scheme used by the content repository.
const DateLayout = "2006-01-02"

const defaultTriggerKey = "growwithkishore2148"

// LinkedInCredentials authorizes UGC posts on behalf of a member.
type LinkedInCredentials struct {
	AccessToken string
	PersonURN   string
}

// Missing lists the environment variables that still need a value.
func (c LinkedInCredentials) Missing() []string {
	var missing []string
	if c.AccessToken == "" {
		missing = append(missing, "ACCESS_TOKEN_LI")
	}
	if c.PersonURN == "" {
		missing = append(missing, "PERSON_URN")
	}
	return missing
}

// InstagramCredentials authorizes Graph API calls for a business account.
type InstagramCredentials struct {
	AccessToken string
	BusinessID  string
}

// Missing lists the environment variables that still need a value.
func (c InstagramCredentials) Missing() []string {
	var missing []string
	if c.AccessToken == "" {
		missing = append(missing, "ACCESS_TOKEN_IG")
	}
	if c.BusinessID == "" {
		missing = append(missing, "INSTAGRAM_BUSINESS_ID")
	}
	return missing
}

// TwitterCredentials holds the OAuth 1.0a user-context key set for X.
type TwitterCredentials struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
}

// Missing lists the environment variables that still need a value.
func (c TwitterCredentials) Missing() []string {
	var missing []string
	if c.ConsumerKey == "" {
		missing = append(missing, "CONSUMER_KEY")
	}
	if c.ConsumerSecret == "" {
		missing = append(missing, "CONSUMER_SECRET")
	}
	if c.AccessToken == "" {
		missing = append(missing, "X_ACCESS_TOKEN")
	}
	if c.AccessSecret == "" {
		missing = append(missing, "X_ACCESS_SECRET")
	}
	return missing
}

// Config is the immutable process-wide configuration. It is constructed once
// at startup and passed explicitly into every component.
type Config struct {
	ServerPort   string
	TriggerKey   string
	GeminiAPIKey string

	LinkedIn  LinkedInCredentials
	Instagram InstagramCredentials
	Twitter   TwitterCredentials

	ContentRepoOwner string
	ContentRepoName  string
	ContentBranch    string
	ContentBasePath  string
	ContentRawBase   string
}

// ContentLocation resolves one day's folder in the content repository.
type ContentLocation struct {
	ImageURL            string
	LinkedInCaptionURL  string
	InstagramCaptionURL string
	TweetCaptionURL     string
}

// Load reads configuration from the environment. A .env file is honored when
// present but is not required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:   getEnv("PORT", "5000"),
		TriggerKey:   getEnv("WEB_TRIGGER_KEY", defaultTriggerKey),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),

		LinkedIn: LinkedInCredentials{
			AccessToken: os.Getenv("ACCESS_TOKEN_LI"),
			PersonURN:   os.Getenv("PERSON_URN"),
		},
		Instagram: InstagramCredentials{
			AccessToken: os.Getenv("ACCESS_TOKEN_IG"),
			BusinessID:  os.Getenv("INSTAGRAM_BUSINESS_ID"),
		},
		Twitter: TwitterCredentials{
			ConsumerKey:    os.Getenv("CONSUMER_KEY"),
			ConsumerSecret: os.Getenv("CONSUMER_SECRET"),
			AccessToken:    os.Getenv("X_ACCESS_TOKEN"),
			AccessSecret:   os.Getenv("X_ACCESS_SECRET"),
		},

		ContentRepoOwner: getEnv("CONTENT_REPO_OWNER", "DATABASESK"),
		ContentRepoName:  getEnv("CONTENT_REPO_NAME", "kishore-personal-"),
		ContentBranch:    getEnv("CONTENT_BRANCH", "main"),
		ContentBasePath:  getEnv("CONTENT_BASE_PATH", "content"),
		ContentRawBase:   getEnv("CONTENT_RAW_BASE_URL", "https://raw.githubusercontent.com"),
	}

	return cfg, nil
}

// ContentFor derives the content URLs for the given day. The date is resolved
// per trigger so a process that stays alive across midnight never serves a
// stale folder.
func (c *Config) ContentFor(day time.Time) ContentLocation {
	base := fmt.Sprintf("%s/%s/%s/%s/%s/%s",
		c.ContentRawBase, c.ContentRepoOwner, c.ContentRepoName, c.ContentBranch,
		c.ContentBasePath, day.Format(DateLayout))

	return ContentLocation{
		ImageURL:            base + "/image.png",
		LinkedInCaptionURL:  base + "/caption_linkedin.txt",
		InstagramCaptionURL: base + "/caption_instagram.txt",
		TweetCaptionURL:     base + "/caption_x.txt",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
