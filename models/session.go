package models

import "time"

// StreamSession gates raw file retrieval for one (user, content) pair.
type StreamSession struct {
	ID         string    `json:"session_id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `json:"user_id" gorm:"index;type:varchar(36);not null"`
	Username   string    `json:"username"`
	ContentID  string    `json:"content_id" gorm:"type:varchar(36);not null"`
	SessionKey string    `json:"session_key" gorm:"uniqueIndex;size:64;not null"`
	IPAddress  string    `json:"ip_address"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (StreamSession) TableName() string {
	return "stream_sessions"
}

// Valid reports whether the session still grants access at now.
func (s StreamSession) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

type SessionRequest struct {
	ContentID string `json:"content_id" binding:"required"`
}

type RenewSessionRequest struct {
	SessionKey string `json:"session_key" binding:"required"`
}

// ViolationType is a client-chosen label. The constants are the labels
// current clients send; others are stored as given.
type ViolationType string

const (
	ViolationScreenshot       ViolationType = "screenshot"
	ViolationScreenRecord     ViolationType = "screen_recording"
	ViolationDevtools         ViolationType = "devtools"
	ViolationDevtoolsDetected ViolationType = "devtools_detected"
	ViolationDownload         ViolationType = "download_attempt"
)

const MaxViolationTypeLength = 64

// Violation records a content-protection breach detected by a client.
type Violation struct {
	ID            string        `json:"violation_id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string        `json:"user_id" gorm:"index;type:varchar(36);not null"`
	ContentID     string        `json:"content_id" gorm:"type:varchar(36)"`
	ViolationType ViolationType `json:"violation_type" gorm:"column:violation_type;type:varchar(64)"`
	DetectedAt    time.Time     `json:"detected_at"`
}

func (Violation) TableName() string {
	return "violations"
}

type ViolationCreate struct {
	ContentID     string        `json:"content_id"`
	ViolationType ViolationType `json:"violation_type" binding:"required"`
}
