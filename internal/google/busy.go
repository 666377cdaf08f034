// Package google bridges an optional Google Calendar into the busy
// computation. Fetched events are rendered back into raw iCalendar
// blobs so they flow through the same extraction pipeline as objects
// fetched from the CalDAV store.
package google

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"meetbook/internal/models"
)

// BusySource fetches a day's events from one or more Google calendars.
// It implements availability.ObjectSource and is wired only when Google
// credentials are configured.
type BusySource struct {
	service     *calendar.Service
	logger      *zap.Logger
	calendarIDs []string
}

// NewBusySource builds an authenticated Google Calendar source. The
// token must have been produced beforehand by the `auth` command.
func NewBusySource(ctx context.Context, logger *zap.Logger, clientID, clientSecret, accountName string, calendarIDs []string) (*BusySource, error) {
	config, err := OAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	tokenFile := fmt.Sprintf("token-%s.json", accountName)
	token, err := TokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load token for account %s: %w. Please run the 'auth' command first", accountName, err)
	}

	client := config.Client(ctx, token)
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &BusySource{service: service, logger: logger, calendarIDs: calendarIDs}, nil
}

// FetchObjectsForDay lists the day's events across all configured
// calendars and renders each one as a raw single-VEVENT object. A
// failure on one calendar is logged and the rest still contribute.
func (s *BusySource) FetchObjectsForDay(ctx context.Context, day time.Time) ([]models.RemoteObject, error) {
	d := day.UTC()
	startOfDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24 * time.Hour)

	var objects []models.RemoteObject
	for _, calID := range s.calendarIDs {
		events, err := s.service.Events.List(calID).
			Context(ctx).
			ShowDeleted(false).
			SingleEvents(true).
			TimeMin(startOfDay.Format(time.RFC3339)).
			TimeMax(endOfDay.Format(time.RFC3339)).
			OrderBy("startTime").
			Do()
		if err != nil {
			s.logger.Warn("failed to list google calendar events",
				zap.String("calendarID", calID), zap.Error(err))
			continue
		}

		for _, item := range events.Items {
			raw, ok := renderEvent(item)
			if !ok {
				continue
			}
			objects = append(objects, models.RemoteObject{
				Path: fmt.Sprintf("google:%s/%s", calID, item.Id),
				Raw:  raw,
			})
		}
	}
	return objects, nil
}

// renderEvent turns a timed Google event into a raw VCALENDAR blob.
// All-day events (date only, no dateTime) carry no specific busy window
// and are skipped.
func renderEvent(item *calendar.Event) (string, bool) {
	if item.Start == nil || item.Start.DateTime == "" || item.End == nil || item.End.DateTime == "" {
		return "", false
	}
	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return "", false
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return "", false
	}

	ve := ical.NewComponent(ical.CompEvent)
	uid := item.ICalUID
	if uid == "" {
		uid = item.Id
	}
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetText(ical.PropSummary, item.Summary)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//meetbook//EN")
	cal.Children = append(cal.Children, ve)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", false
	}
	return buf.String(), true
}
