package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"retention-flow-be/internal/entity"
	"retention-flow-be/internal/model"
)

type AnalyticsMapper struct{}

func NewAnalyticsMapper() *AnalyticsMapper {
	return &AnalyticsMapper{}
}

func (m *AnalyticsMapper) EventToEntity(e *model.AnalyticsEvent) *entity.AnalyticsEvent {
	if e == nil {
		return nil
	}
	var props map[string]any
	if len(e.Properties) > 0 {
		// A row with malformed JSONB still maps; properties come back nil.
		_ = json.Unmarshal(e.Properties, &props)
	}
	return &entity.AnalyticsEvent{
		Id:         e.Id,
		UserId:     e.UserId,
		SessionId:  e.SessionId,
		EventName:  e.EventName,
		Properties: props,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *AnalyticsMapper) EventToModel(e *entity.AnalyticsEvent) (*model.AnalyticsEvent, error) {
	if e == nil {
		return nil, nil
	}
	var props datatypes.JSON
	if e.Properties != nil {
		raw, err := json.Marshal(e.Properties)
		if err != nil {
			return nil, err
		}
		props = datatypes.JSON(raw)
	}
	return &model.AnalyticsEvent{
		Id:         e.Id,
		UserId:     e.UserId,
		SessionId:  e.SessionId,
		EventName:  e.EventName,
		Properties: props,
		CreatedAt:  e.CreatedAt,
	}, nil
}

func (m *AnalyticsMapper) JourneyToEntity(j *model.UserJourney) *entity.UserJourney {
	if j == nil {
		return nil
	}
	var steps []entity.JourneyStep
	if len(j.Steps) > 0 {
		_ = json.Unmarshal(j.Steps, &steps)
	}
	return &entity.UserJourney{
		Id:          j.Id,
		UserId:      j.UserId,
		SessionId:   j.SessionId,
		Steps:       steps,
		Outcome:     entity.JourneyOutcome(j.Outcome),
		CompletedAt: j.CompletedAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func (m *AnalyticsMapper) JourneyToModel(j *entity.UserJourney) (*model.UserJourney, error) {
	if j == nil {
		return nil, nil
	}
	var steps datatypes.JSON
	if j.Steps != nil {
		raw, err := json.Marshal(j.Steps)
		if err != nil {
			return nil, err
		}
		steps = datatypes.JSON(raw)
	}
	return &model.UserJourney{
		Id:          j.Id,
		UserId:      j.UserId,
		SessionId:   j.SessionId,
		Steps:       steps,
		Outcome:     string(j.Outcome),
		CompletedAt: j.CompletedAt,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}, nil
}
