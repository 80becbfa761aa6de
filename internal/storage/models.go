package storage

import "time"

// Installation is a single metered gas service under management. Its
// reading day and cycle drive the billing-period math and its provider
// key selects the tariff source.
type Installation struct {
	ID               string    `json:"id" gorm:"primaryKey;column:id"`
	Name             string    `json:"name" gorm:"column:name"`
	ProviderKey      string    `json:"provider_key" gorm:"column:provider_key"`
	Region           string    `json:"region,omitempty" gorm:"column:region"`
	ReadingDay       int       `json:"reading_day" gorm:"column:reading_day"`
	ReadingCycle     string    `json:"reading_cycle" gorm:"column:reading_cycle"`
	UsageType        string    `json:"usage_type" gorm:"column:usage_type"`
	CentralHeating   bool      `json:"central_heating" gorm:"column:central_heating"`
	CorrectionFactor float64   `json:"correction_factor" gorm:"column:correction_factor"`
	CreatedAt        time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// TariffSnapshot stores a previously fetched tariff payload for a
// provider so restarts and provider outages do not lose the last known
// values.
type TariffSnapshot struct {
	ID        uint      `json:"-" gorm:"primaryKey;column:id"`
	Provider  string    `json:"provider" gorm:"column:provider"`
	Payload   []byte    `json:"payload" gorm:"column:payload"`
	FetchedAt time.Time `json:"fetched_at" gorm:"column:fetched_at"`
}

// Period record slots. Each installation keeps at most one record per
// slot; a new billing period shifts prev into preprev.
const (
	SlotPrev    = "prev"
	SlotPrePrev = "preprev"
)

// PeriodRecord is a closed billing period for an installation.
type PeriodRecord struct {
	ID             uint      `json:"-" gorm:"primaryKey;column:id"`
	InstallationID string    `json:"installation_id" gorm:"column:installation_id;uniqueIndex:idx_period_slot"`
	Slot           string    `json:"slot" gorm:"column:slot;uniqueIndex:idx_period_slot"`
	PeriodStart    time.Time `json:"period_start" gorm:"column:period_start"`
	PeriodEnd      time.Time `json:"period_end" gorm:"column:period_end"`
	UsageM3        float64   `json:"usage_m3" gorm:"column:usage_m3"`
	FeeKRW         int64     `json:"fee_krw" gorm:"column:fee_krw"`
	RecordedAt     time.Time `json:"recorded_at" gorm:"column:recorded_at"`
}

// EstimatorState is the persistent estimator state for an installation:
// the meter value that opened the current period and the latch that
// keeps a reset from running twice on the same day.
type EstimatorState struct {
	InstallationID string    `json:"installation_id" gorm:"primaryKey;column:installation_id"`
	PeriodStartM3  float64   `json:"period_start_m3" gorm:"column:period_start_m3"`
	LastResetOn    string    `json:"last_reset_on" gorm:"column:last_reset_on"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// User represents a registered user in the system.
type User struct {
	ID                    string    `json:"id" gorm:"primaryKey;column:id"`
	Username              string    `json:"username" gorm:"unique;column:username"`
	FirstName             string    `json:"first_name" gorm:"column:first_name"`
	LastName              string    `json:"last_name" gorm:"column:last_name"`
	Email                 string    `json:"email" gorm:"column:email"`
	EmailVerified         bool      `json:"email_verified" gorm:"column:email_verified"`
	SkipEmailVerification bool      `json:"skip_email_verification" gorm:"column:skip_email_verification"`
	OnboardingCompleted   bool      `json:"onboarding_completed" gorm:"column:onboarding_completed"`
	PasswordHash          string    `json:"-" gorm:"column:password_hash"`
	Role                  string    `json:"role" gorm:"column:role"`
	CreatedAt             time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt             time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// Token represents an API access token.
type Token struct {
	ID         string     `json:"id" gorm:"primaryKey;column:id"`
	UserID     string     `json:"user_id" gorm:"column:user_id"`
	Name       string     `json:"name" gorm:"column:name"`
	TokenHash  string     `json:"-" gorm:"column:token_hash"`
	Role       string     `json:"role" gorm:"column:role"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" gorm:"column:expires_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" gorm:"column:last_used_at"`
}

// CasbinRule represents a policy rule for RBAC.
type CasbinRule struct {
	ID    uint   `gorm:"primaryKey"`
	PType string `json:"ptype" gorm:"column:ptype"`
	V0    string `json:"v0" gorm:"column:v0"`
	V1    string `json:"v1" gorm:"column:v1"`
	V2    string `json:"v2" gorm:"column:v2"`
	V3    string `json:"v3" gorm:"column:v3"`
	V4    string `json:"v4" gorm:"column:v4"`
	V5    string `json:"v5" gorm:"column:v5"`
}

// EmailConfig holds configuration for email notifications.
type EmailConfig struct {
	ID          string    `json:"id" gorm:"primaryKey;column:id"`
	Provider    string    `json:"provider" gorm:"column:provider"` // "smtp", "sendgrid", "gmail", "resend"
	Host        string    `json:"host,omitempty" gorm:"column:host"`
	Port        int       `json:"port,omitempty" gorm:"column:port"`
	Username    string    `json:"username,omitempty" gorm:"column:username"`
	Password    string    `json:"password,omitempty" gorm:"column:password"`
	FromAddress string    `json:"from_address" gorm:"column:from_address"`
	FromName    string    `json:"from_name" gorm:"column:from_name"`
	APIKey      string    `json:"api_key,omitempty" gorm:"column:api_key"`       // For Sendgrid
	Encryption  string    `json:"encryption,omitempty" gorm:"column:encryption"` // "none", "ssl", "tls"
	Enabled     bool      `json:"enabled" gorm:"column:enabled"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// Setting is a global key/value configuration row, used for manual
// tariff overrides and operational flags.
type Setting struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// ScheduledJob records the last outcome of a background job.
type ScheduledJob struct {
	Name           string    `gorm:"primaryKey;column:name"`
	LastRunAt      time.Time `gorm:"column:last_run_at"`
	LastDurationMs int64     `gorm:"column:last_duration_ms"`
	LastSuccess    int       `gorm:"column:last_success"`
	LastError      string    `gorm:"column:last_error"`
}
