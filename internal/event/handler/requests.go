package handler

import (
	"time"

	"eventhub/internal/event/models"
	"eventhub/internal/event/service"
	id "eventhub/pkg/domain"
	dErrors "eventhub/pkg/domain-errors"
)

type createEventRequest struct {
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Content              string     `json:"content"`
	CategoryID           int64      `json:"category_id"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              time.Time  `json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	Mode                 string     `json:"event_mode"`
	MaxParticipants      *int       `json:"max_participants"`
	LocationName         string     `json:"location_name"`
	LocationAddress      string     `json:"location_address"`
	Latitude             *float64   `json:"latitude"`
	Longitude            *float64   `json:"longitude"`
	Tags                 []string   `json:"tags"`
}

func (r createEventRequest) toInput() (service.CreateInput, error) {
	if r.CategoryID <= 0 {
		return service.CreateInput{}, dErrors.New(dErrors.CodeValidation, "category_id must be positive")
	}
	schedule, err := models.NewSchedule(r.StartDate, r.EndDate, r.RegistrationDeadline)
	if err != nil {
		return service.CreateInput{}, err
	}
	location, err := models.NewLocation(r.LocationName, r.LocationAddress, r.Latitude, r.Longitude)
	if err != nil {
		return service.CreateInput{}, err
	}
	var mode models.Mode
	if r.Mode != "" {
		mode, err = models.ParseMode(r.Mode)
		if err != nil {
			return service.CreateInput{}, err
		}
	}
	return service.CreateInput{
		Title:           r.Title,
		Description:     r.Description,
		Content:         r.Content,
		CategoryID:      id.CategoryID(r.CategoryID),
		Schedule:        schedule,
		Mode:            mode,
		MaxParticipants: r.MaxParticipants,
		Location:        location,
		Tags:            r.Tags,
	}, nil
}

type scheduleRequest struct {
	StartDate            time.Time  `json:"start_date"`
	EndDate              time.Time  `json:"end_date"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
}

func (r scheduleRequest) toSchedule() (models.Schedule, error) {
	return models.NewSchedule(r.StartDate, r.EndDate, r.RegistrationDeadline)
}

type locationRequest struct {
	Name      string   `json:"location_name"`
	Address   string   `json:"location_address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r locationRequest) toLocation() (models.Location, error) {
	return models.NewLocation(r.Name, r.Address, r.Latitude, r.Longitude)
}

type modeRequest struct {
	Mode string `json:"event_mode"`
}

type capacityRequest struct {
	MaxParticipants int `json:"max_participants"`
}
