package entity

import (
	"encoding/json"
	"time"
)

type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityPrivate    Visibility = "private"
	VisibilityFamilyOnly Visibility = "family_only"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityFamilyOnly:
		return true
	}
	return false
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

type Memorial struct {
	ID             string
	UserID         string
	DeceasedName   string
	DateOfBirth    time.Time
	DateOfPassing  time.Time
	Biography      string
	PhotoURL       string
	Visibility     Visibility
	Location       string
	Obituary       string
	FuneralDetails json.RawMessage
	IsFeatured     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Tribute is a message left on a memorial. UserID is empty for guests.
type Tribute struct {
	ID           string
	MemorialID   string
	UserID       string
	Message      string
	AuthorName   string
	Relationship string
	IsAnonymous  bool
	CreatedAt    time.Time
}

type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// MemorialMedia is a photo or video attached to a memorial.
type MemorialMedia struct {
	ID         string
	MemorialID string
	Kind       MediaKind
	URL        string
	Caption    string
	UploadedBy string
	CreatedAt  time.Time
}
