package model

import "time"

type ID = uint

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

type User struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	DisplayName  string `json:"displayName" db:"display_name"`
}

type Session struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	Token     string    `json:"token" db:"token"`
	User      ID        `json:"userId" db:"user_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}

// Workday is one continuous work session ("jornada") from clock-in to
// clock-out. EndTime is nil while the workday is open; Status mirrors it:
// "completed" iff EndTime is set.
type Workday struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	User      ID         `json:"userId" db:"user_id"`
	StartTime time.Time  `json:"startTime" db:"fecha_inicio"`
	EndTime   *time.Time `json:"endTime" db:"fecha_fin"`
	Status    string     `json:"status" db:"estado"`
}

func (w Workday) Open() bool {
	return w.EndTime == nil
}

// Pause is a sub-interval of a workday during which work is suspended.
// A workday has at most one open pause at any time.
type Pause struct {
	ID        ID        `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Workday   ID         `json:"workdayId" db:"jornada_id"`
	StartTime time.Time  `json:"startTime" db:"inicio"`
	EndTime   *time.Time `json:"endTime" db:"fin"`
}

func (p Pause) Open() bool {
	return p.EndTime == nil
}
