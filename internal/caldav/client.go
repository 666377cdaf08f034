// Package caldav talks to the remote CalDAV store: day-scoped reads of
// raw calendar objects for availability computation, and single-event
// writes for confirmed bookings.
package caldav

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	caldavproto "github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"meetbook/internal/models"
)

// customTransport adds Basic Auth and a User-Agent to every request.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "meetbook/1.0")
	return t.Transport.RoundTrip(req)
}

// Client is a CalDAV reader/writer bound to one named calendar, plus any
// additional calendars whose events also count as busy time.
type Client struct {
	caldavClient *caldavproto.Client
	webdavClient *webdav.Client
	logger       *zap.Logger
	organizer    string

	// calendarPaths[0] is the booking calendar; the rest are read-only
	// additional busy calendars.
	calendarPaths []string
}

// NewClient discovers the named calendars on the server and returns a
// client bound to them. The first name is the calendar bookings are
// written to; additional names contribute busy events only.
func NewClient(logger *zap.Logger, serverURL, username, password, calendarName, organizer string, additional []string) (*Client, error) {
	httpClient := &http.Client{
		Transport: &customTransport{
			Username:  username,
			Password:  password,
			Transport: http.DefaultTransport,
		},
		Timeout: 10 * time.Second,
	}

	caldavClient, err := caldavproto.NewClient(httpClient, serverURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	webdavClient, err := webdav.NewClient(httpClient, serverURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	c := &Client{
		caldavClient: caldavClient,
		webdavClient: webdavClient,
		logger:       logger,
		organizer:    organizer,
	}

	names := append([]string{calendarName}, additional...)
	paths, err := c.findCalendars(context.Background(), names)
	if err != nil {
		return nil, err
	}
	c.calendarPaths = paths

	logger.Info("connected to CalDAV store",
		zap.String("server", serverURL), zap.Strings("calendars", paths))
	return c, nil
}

// findCalendars resolves calendar names to server paths via the usual
// principal / home-set discovery chain. The booking calendar must exist;
// missing additional calendars are logged and skipped.
func (c *Client) findCalendars(ctx context.Context, names []string) ([]string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find principal path: %w", err)
	}
	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar home set: %w", err)
	}
	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendars: %w", err)
	}

	byName := make(map[string]string, len(calendars))
	for _, cal := range calendars {
		byName[cal.Name] = cal.Path
	}

	var paths []string
	for i, name := range names {
		p, ok := byName[strings.TrimSpace(name)]
		if !ok {
			if i == 0 {
				return nil, fmt.Errorf("no calendar found with name '%s'", name)
			}
			c.logger.Warn("additional calendar not found, skipping", zap.String("name", name))
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// FetchObjectsForDay returns the raw calendar objects relevant to the
// given day. Each calendar is queried with a VEVENT time-range filter;
// when the scoped query errors or comes back empty the whole collection
// is listed and read unscoped instead, since some servers mishandle
// time-range filters or store payloads the query parser chokes on.
func (c *Client) FetchObjectsForDay(ctx context.Context, day time.Time) ([]models.RemoteObject, error) {
	d := day.UTC()
	startOfDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24 * time.Hour)

	query := &caldavproto.CalendarQuery{
		CompFilter: caldavproto.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldavproto.CompFilter{{
				Name:  "VEVENT",
				Start: startOfDay,
				End:   endOfDay,
			}},
		},
	}

	var all []models.RemoteObject
	for i, calPath := range c.calendarPaths {
		objects, err := c.fetchCalendar(ctx, calPath, query)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("failed to fetch calendar %s: %w", calPath, err)
			}
			c.logger.Warn("failed to fetch additional calendar",
				zap.String("calendar", calPath), zap.Error(err))
			continue
		}
		all = append(all, objects...)
	}
	return all, nil
}

func (c *Client) fetchCalendar(ctx context.Context, calPath string, query *caldavproto.CalendarQuery) ([]models.RemoteObject, error) {
	objects, err := c.caldavClient.QueryCalendar(ctx, calPath, query)
	if err == nil && len(objects) > 0 {
		result := make([]models.RemoteObject, 0, len(objects))
		for _, obj := range objects {
			raw, err := encodeCalendar(obj.Data)
			if err != nil {
				c.logger.Warn("failed to re-encode calendar object",
					zap.String("path", obj.Path), zap.Error(err))
				continue
			}
			result = append(result, models.RemoteObject{Path: obj.Path, Raw: raw})
		}
		return result, nil
	}
	if err != nil {
		c.logger.Warn("scoped calendar query failed, falling back to full listing",
			zap.String("calendar", calPath), zap.Error(err))
	}
	return c.listRaw(ctx, calPath)
}

// listRaw is the unscoped fallback: list every object in the collection
// and read each payload verbatim, leaving all decoding to the extraction
// layer.
func (c *Client) listRaw(ctx context.Context, calPath string) ([]models.RemoteObject, error) {
	files, err := c.webdavClient.ReadDir(ctx, calPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar collection: %w", err)
	}

	var result []models.RemoteObject
	for _, f := range files {
		if f.IsDir || !strings.HasSuffix(f.Path, ".ics") {
			continue
		}
		r, err := c.webdavClient.Open(ctx, f.Path)
		if err != nil {
			c.logger.Warn("failed to read calendar object",
				zap.String("path", f.Path), zap.Error(err))
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			c.logger.Warn("failed to read calendar object body",
				zap.String("path", f.Path), zap.Error(err))
			continue
		}
		result = append(result, models.RemoteObject{Path: f.Path, Raw: string(data)})
	}
	return result, nil
}

// CreateEvent writes a single-VEVENT object for a confirmed booking to
// the booking calendar and returns the event UID.
func (c *Client) CreateEvent(ctx context.Context, event *models.Event) (string, error) {
	if event.UID == "" {
		event.UID = uuid.New().String()
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//meetbook//EN")
	cal.Children = append(cal.Children, c.toICal(event))

	eventPath := path.Join(c.calendarPaths[0], fmt.Sprintf("%s.ics", event.UID))
	writer, err := c.webdavClient.Create(ctx, eventPath)
	if err != nil {
		return "", fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}
	defer writer.Close()

	if err := ical.NewEncoder(writer).Encode(cal); err != nil {
		return "", fmt.Errorf("failed to encode event to iCal format: %w", err)
	}

	c.logger.Info("created calendar event",
		zap.String("uid", event.UID), zap.Time("start", event.StartTime))
	return event.UID, nil
}

// toICal builds the VEVENT component: fixed stamp/status fields, the
// configured organizer, and attendees as need-response entries.
func (c *Client) toICal(event *models.Event) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, event.UID)
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.StartTime.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeEnd, event.EndTime.UTC())
	ve.Props.SetText(ical.PropStatus, "CONFIRMED")

	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}

	organizer := event.Organizer
	if organizer == "" {
		organizer = c.organizer
	}
	if organizer != "" {
		p := ical.NewProp(ical.PropOrganizer)
		p.SetText(fmt.Sprintf("mailto:%s", organizer))
		ve.Props.Add(p)
	}

	for _, attendee := range event.Attendees {
		p := ical.NewProp(ical.PropAttendee)
		p.Value = fmt.Sprintf("mailto:%s", attendee)
		p.Params.Set("PARTSTAT", "NEEDS-ACTION")
		p.Params.Set("RSVP", "TRUE")
		p.Params.Set("ROLE", "REQ-PARTICIPANT")
		ve.Props.Add(p)
	}
	return ve
}

func encodeCalendar(cal *ical.Calendar) (string, error) {
	if cal == nil {
		return "", fmt.Errorf("calendar object has no data")
	}
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", err
	}
	return buf.String(), nil
}
