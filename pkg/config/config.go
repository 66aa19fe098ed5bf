package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Fireflies FirefliesConfig
	ReadAI    ReadAIConfig
	Gemini    GeminiConfig
	Notion    NotionConfig
	Monday    MondayConfig
	Calendar  GoogleCalendarConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"lezat_scheduling"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// FirefliesConfig holds Fireflies transcript API configuration
type FirefliesConfig struct {
	APIURL        string        `envconfig:"FIREFLIES_API_URL" default:"https://api.fireflies.ai/graphql"`
	APIKey        string        `envconfig:"FIREFLIES_API_KEY" default:""`
	Timeout       time.Duration `envconfig:"FIREFLIES_API_TIMEOUT" default:"10s"`
	UserAgent     string        `envconfig:"FIREFLIES_API_USER_AGENT" default:"LezatSchedulingBackend/1.0"`
	WebhookSecret string        `envconfig:"FIREFLIES_WEBHOOK_SECRET" default:""`
}

// ReadAIConfig holds Read AI API configuration
type ReadAIConfig struct {
	APIURL        string        `envconfig:"READ_AI_API_URL" default:"https://api.read.ai/v1"`
	APIKey        string        `envconfig:"READ_AI_API_KEY" default:""`
	Timeout       time.Duration `envconfig:"READ_AI_API_TIMEOUT" default:"10s"`
	UserAgent     string        `envconfig:"READ_AI_API_USER_AGENT" default:"LezatSchedulingBackend/1.0"`
	WebhookSecret string        `envconfig:"READ_AI_WEBHOOK_SECRET" default:""`
}

// GeminiConfig holds the action item extraction model configuration
type GeminiConfig struct {
	APIKey  string        `envconfig:"GEMINI_API_KEY" default:""`
	Model   string        `envconfig:"GEMINI_MODEL" default:"gemini-3-flash-preview"`
	APIURL  string        `envconfig:"GEMINI_API_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout time.Duration `envconfig:"GEMINI_API_TIMEOUT" default:"20s"`
}

// NotionConfig holds default Notion Kanban configuration. Per-user
// overrides come from the integration settings store.
type NotionConfig struct {
	APIVersion      string        `envconfig:"NOTION_API_VERSION" default:"2022-06-28"`
	Timeout         time.Duration `envconfig:"NOTION_API_TIMEOUT" default:"10s"`
	TodoStatusName  string        `envconfig:"NOTION_KANBAN_TODO_STATUS" default:"Por hacer"`
	TitleProperty   string        `envconfig:"NOTION_TASK_TITLE_PROPERTY" default:"Name"`
	StatusProperty  string        `envconfig:"NOTION_TASK_STATUS_PROPERTY" default:"Status"`
	DueDateProperty string        `envconfig:"NOTION_TASK_DUE_DATE_PROPERTY" default:"Due date"`
	DetailsProperty string        `envconfig:"NOTION_TASK_DETAILS_PROPERTY" default:"Details"`
	MeetingProperty string        `envconfig:"NOTION_TASK_MEETING_ID_PROPERTY" default:"Meeting ID"`
}

// MondayConfig holds default Monday Kanban configuration.
type MondayConfig struct {
	APIURL          string        `envconfig:"MONDAY_API_URL" default:"https://api.monday.com/v2"`
	Timeout         time.Duration `envconfig:"MONDAY_API_TIMEOUT" default:"10s"`
	StatusColumnID  string        `envconfig:"MONDAY_STATUS_COLUMN_ID" default:"status"`
	TodoStatusLabel string        `envconfig:"MONDAY_KANBAN_TODO_STATUS" default:"Por hacer"`
	DueDateColumnID string        `envconfig:"MONDAY_DUE_DATE_COLUMN_ID" default:"date"`
	DetailsColumnID string        `envconfig:"MONDAY_DETAILS_COLUMN_ID" default:"text"`
	MeetingColumnID string        `envconfig:"MONDAY_MEETING_ID_COLUMN_ID" default:"text1"`
}

// GoogleCalendarConfig holds calendar destination configuration.
type GoogleCalendarConfig struct {
	APIURL     string        `envconfig:"GOOGLE_CALENDAR_API_URL" default:"https://www.googleapis.com/calendar/v3"`
	CalendarID string        `envconfig:"GOOGLE_CALENDAR_ID" default:"primary"`
	Timeout    time.Duration `envconfig:"GOOGLE_CALENDAR_API_TIMEOUT" default:"10s"`
	Timezone   string        `envconfig:"GOOGLE_CALENDAR_EVENT_TIMEZONE" default:"UTC"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return &cfg, nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
