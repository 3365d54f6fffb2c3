// Package models contains the database model definitions read by the
// repository façade. Only the entities the core subsystems actually read
// (fixtures, scenes, cue lists) are represented here; the write-side
// surface of the original schema (projects, users, fixture-library
// metadata, scene boards, settings) belongs to the out-of-scope API layer.
package models

import "time"

// FixtureInstance represents a physical fixture instance in a project.
// Table: fixture_instances
type FixtureInstance struct {
	ID           string `gorm:"column:id;primaryKey"`
	Name         string `gorm:"column:name"`
	ProjectID    string `gorm:"column:project_id;index"`
	Universe     int    `gorm:"column:universe"`
	StartChannel int    `gorm:"column:start_channel"`
	ChannelCount *int   `gorm:"column:channel_count"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relations
	Channels []InstanceChannel `gorm:"foreignKey:FixtureID"`
}

func (FixtureInstance) TableName() string { return "fixture_instances" }

// ChannelTypeIntensity is the InstanceChannel.Type value identifying a
// dimmer/intensity channel (as opposed to color, position, gobo, etc.).
// playback.Service consults this to decide which channels fade_to_black
// touches (spec.md §4.3: "every intensity channel ... identified via
// fixture channel metadata").
const ChannelTypeIntensity = "INTENSITY"

// InstanceChannel represents a channel on a fixture instance.
// Table: instance_channels
type InstanceChannel struct {
	ID           string `gorm:"column:id;primaryKey"`
	FixtureID    string `gorm:"column:fixture_id;index"`
	Offset       int    `gorm:"column:offset"`
	Name         string `gorm:"column:name"`
	// Type classifies the channel (INTENSITY, RED, GREEN, BLUE, PAN, TILT,
	// GOBO, ...); only INTENSITY participates in fade_to_black.
	Type         string `gorm:"column:type"`
	MinValue     int    `gorm:"column:min_value;default:0"`
	MaxValue     int    `gorm:"column:max_value;default:255"`
	DefaultValue int    `gorm:"column:default_value;default:0"`
	// FadeBehavior enum: FADE, SNAP, SNAP_END — see internal/services/fade.Behavior.
	FadeBehavior string `gorm:"column:fade_behavior;default:FADE"`
}

func (InstanceChannel) TableName() string { return "instance_channels" }

// Scene represents a lighting scene: a sparse overlay of channel values
// touching only the fixtures/channels the operator captured.
// Table: scenes
type Scene struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	ProjectID   string    `gorm:"column:project_id;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relations
	FixtureValues []FixtureValue `gorm:"foreignKey:SceneID"`
}

func (Scene) TableName() string { return "scenes" }

// ChannelValue represents a single channel's value in a scene.
type ChannelValue struct {
	Offset int `json:"offset"`
	Value  int `json:"value"`
}

// FixtureValue represents one fixture's channel values within a scene.
// Table: fixture_values
type FixtureValue struct {
	ID         string `gorm:"column:id;primaryKey"`
	SceneID    string `gorm:"column:scene_id;index"`
	FixtureID  string `gorm:"column:fixture_id;index"`
	Channels   string `gorm:"column:channels;default:[]"` // JSON array of ChannelValue
	SceneOrder *int   `gorm:"column:scene_order"`
}

func (FixtureValue) TableName() string { return "fixture_values" }

// CueList represents a cue list (an ordered sequence of cues).
// Table: cue_lists
type CueList struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description"`
	Loop        bool      `gorm:"column:loop;default:false"`
	ProjectID   string    `gorm:"column:project_id;index"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relations
	Cues []Cue `gorm:"foreignKey:CueListID"`
}

func (CueList) TableName() string { return "cue_lists" }

// Cue represents a single lighting cue within a cue list.
// Table: cues
type Cue struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	CueNumber   float64   `gorm:"column:cue_number"`
	CueListID   string    `gorm:"column:cue_list_id;index"`
	SceneID     string    `gorm:"column:scene_id;index"`
	FadeInTime  float64   `gorm:"column:fade_in_time;default:0"`
	FadeOutTime float64   `gorm:"column:fade_out_time;default:0"`
	FollowTime  *float64  `gorm:"column:follow_time"`
	EasingType  *string   `gorm:"column:easing_type"`
	Notes       *string   `gorm:"column:notes"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relations
	Scene *Scene `gorm:"foreignKey:SceneID"`
}

func (Cue) TableName() string { return "cues" }
