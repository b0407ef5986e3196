package storage

import (
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/avamind/ava-core/agent/contract"
)

// MessageRecord is one archived conversation turn. The archive is append-only
// and is the durable source for rebuilding a session after restart.
type MessageRecord struct {
	bun.BaseModel `bun:"table:messages"`

	ID        string         `bun:"id,pk"`
	UserID    string         `bun:"user_id,notnull"`
	Mode      contractx.Mode `bun:"mode,notnull"`
	Role      contractx.Role `bun:"role,notnull"`
	Content   string         `bun:"content,notnull"`
	CreatedAt time.Time      `bun:"created_at,notnull"`
}

// AvatarRecord is the per-user companion profile. Its absence means the user
// has not finished onboarding.
type AvatarRecord struct {
	bun.BaseModel `bun:"table:avatars"`

	UserID      string    `bun:"user_id,pk"`
	Name        string    `bun:"name,notnull"`
	Personality string    `bun:"personality,notnull"`
	Timezone    string    `bun:"timezone,notnull,default:'UTC'"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

// PreferenceRecord carries per-user settings, currently the preferred channel.
type PreferenceRecord struct {
	bun.BaseModel `bun:"table:preferences"`

	UserID            string    `bun:"user_id,pk"`
	PreferredPlatform string    `bun:"preferred_platform,notnull"`
	UpdatedAt         time.Time `bun:"updated_at,notnull"`
}

// WhatsAppLink maps a verified sender phone number to an account.
type WhatsAppLink struct {
	bun.BaseModel `bun:"table:whatsapp_links"`

	Phone     string    `bun:"phone,pk"`
	UserID    string    `bun:"user_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// AuditRecord is one safety-gate trip. Phrases holds matched tokens only.
type AuditRecord struct {
	bun.BaseModel `bun:"table:audit_events"`

	ID        string         `bun:"id,pk"`
	UserID    string         `bun:"user_id,notnull"`
	Kind      string         `bun:"kind,notnull"`
	Mode      contractx.Mode `bun:"mode,notnull"`
	Category  string         `bun:"category"`
	Phrases   []string       `bun:"phrases,array"`
	CreatedAt time.Time      `bun:"created_at,notnull"`
}
