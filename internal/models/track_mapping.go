package models

import (
	"fmt"
	"time"
)

// TrackMapping caches the platform-native id a search resolved for a lookup key.
//
// The lookup key is either an ISRC or a normalized "title|artist" pair.
type TrackMapping struct {
	id        string
	platform  Platform
	lookupKey string
	nativeID  string
	createdAt time.Time
	updatedAt time.Time
}

// NewTrackMapping creates a mapping from lookupKey to nativeID on platform.
func NewTrackMapping(platform Platform, lookupKey, nativeID string) *TrackMapping {
	now := time.Now()
	return &TrackMapping{
		platform:  platform,
		lookupKey: lookupKey,
		nativeID:  nativeID,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreTrackMapping rebuilds a [TrackMapping] from stored columns.
func RestoreTrackMapping(id string, platform Platform, lookupKey, nativeID string, createdAt, updatedAt time.Time) *TrackMapping {
	return &TrackMapping{
		id:        id,
		platform:  platform,
		lookupKey: lookupKey,
		nativeID:  nativeID,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (m *TrackMapping) ID() string               { return m.id }
func (m *TrackMapping) Platform() Platform       { return m.platform }
func (m *TrackMapping) LookupKey() string        { return m.lookupKey }
func (m *TrackMapping) NativeID() string         { return m.nativeID }
func (m *TrackMapping) CreatedAt() time.Time     { return m.createdAt }
func (m *TrackMapping) UpdatedAt() time.Time     { return m.updatedAt }
func (m *TrackMapping) SetID(id string)          { m.id = id }
func (m *TrackMapping) SetNativeID(id string)    { m.nativeID = id }
func (m *TrackMapping) SetUpdatedAt(t time.Time) { m.updatedAt = t }

// Validate checks required fields.
func (m *TrackMapping) Validate() error {
	if m.platform == "" {
		return fmt.Errorf("platform is required")
	}
	if m.lookupKey == "" {
		return fmt.Errorf("lookup key is required")
	}
	if m.nativeID == "" {
		return fmt.Errorf("native id is required")
	}
	return nil
}
