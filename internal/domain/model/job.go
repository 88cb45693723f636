package model

import (
	"encoding/json"
	"strings"
	"time"

	"decor-studio/internal/domain"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type JobType string

const (
	JobTypeAutoSelect      JobType = "auto_select"
	JobTypeImageGeneration JobType = "image_generation"
	JobTypeProductSearch   JobType = "product_search"
)

func ParseJobType(s string) (JobType, error) {
	switch t := JobType(strings.TrimSpace(s)); t {
	case JobTypeAutoSelect, JobTypeImageGeneration, JobTypeProductSearch:
		return t, nil
	default:
		return "", domain.ErrInvalidArgument
	}
}

// JobPayload is the compute request captured at submission. Immutable after
// creation; the worker forwards it verbatim to the compute backend.
type JobPayload struct {
	UserID                string            `json:"user_id"`
	SpaceID               string            `json:"space_id"`
	RoomType              string            `json:"room_type,omitempty"`
	RoomTheme             string            `json:"room_theme,omitempty"`
	ColorPreference       string            `json:"color_preference,omitempty"`
	AdditionalInstruction string            `json:"additional_instruction,omitempty"`
	EmptyRoomImageURL     string            `json:"empty_room_image_url,omitempty"`
	SearchType            string            `json:"search_type,omitempty"`
	ProductJSON           []ProductCategory `json:"product_json,omitempty"`
	ImageCount            int               `json:"image_count,omitempty"`
	CoordinatesRequired   bool              `json:"coordinates_required,omitempty"`
}

func (p *JobPayload) Validate() error {
	if p == nil || p.UserID == "" || p.SpaceID == "" {
		return domain.ErrInvalidArgument
	}
	return nil
}

// JobResult is the compute backend's envelope: a status string plus the
// type-specific response data. Stored as-is on the job row.
type JobResult struct {
	Status       string          `json:"status"`
	ResponseData json.RawMessage `json:"response_data,omitempty"`
}

func (r *JobResult) Success() bool { return r != nil && r.Status == "success" }

type Job struct {
	ID             string
	UserID         string
	SpaceID        string
	Type           JobType
	Status         JobStatus
	Payload        JobPayload
	Result         *JobResult
	ErrorMessage   string
	LeaseExpiresAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewJob(id string, jobType JobType, payload JobPayload) (*Job, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Job{
		ID:        id,
		UserID:    payload.UserID,
		SpaceID:   payload.SpaceID,
		Type:      jobType,
		Status:    JobStatusPending,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkProcessing is the worker intake transition. Only pending jobs may enter
// processing; anything else means a duplicate dispatch or a terminal job.
func (j *Job) MarkProcessing(lease time.Time) error {
	if j.Status != JobStatusPending {
		if j.Status == JobStatusProcessing {
			return domain.ErrJobAlreadyTaken
		}
		return domain.ErrInvalidTransition
	}
	j.Status = JobStatusProcessing
	j.LeaseExpiresAt = &lease
	j.UpdatedAt = time.Now()
	return nil
}

// Complete sets the result exactly once, on the processing->completed edge.
func (j *Job) Complete(result *JobResult) error {
	if j.Status != JobStatusProcessing {
		return domain.ErrInvalidTransition
	}
	j.Status = JobStatusCompleted
	j.Result = result
	j.LeaseExpiresAt = nil
	j.UpdatedAt = time.Now()
	return nil
}

// Fail records the error message. Failing from pending is allowed only for
// dispatch failures at the gateway; the worker always fails from processing.
func (j *Job) Fail(msg string) error {
	if j.Status.Terminal() {
		return domain.ErrInvalidTransition
	}
	j.Status = JobStatusFailed
	j.ErrorMessage = msg
	j.LeaseExpiresAt = nil
	j.UpdatedAt = time.Now()
	return nil
}
