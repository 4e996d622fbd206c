package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/yphilios-calendar/internal/cache"
	"github.com/zapponejosh/yphilios-calendar/internal/calendar"
	"github.com/zapponejosh/yphilios-calendar/internal/config"
	"github.com/zapponejosh/yphilios-calendar/internal/database"
	"github.com/zapponejosh/yphilios-calendar/internal/events"
	"github.com/zapponejosh/yphilios-calendar/internal/logger"
	"github.com/zapponejosh/yphilios-calendar/internal/seed"
)

// DefaultYear is used when a request does not name a year.
const DefaultYear = 1622

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db      *database.DB
	cal     *calendar.Calendar
	catalog atomic.Pointer[events.Catalog]
	cache   cache.Cache
	cfg     *config.Config
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance serving catalog. A nil
// cache disables caching.
func NewHandlers(db *database.DB, catalog *events.Catalog, c cache.Cache, cfg *config.Config, log *slog.Logger) *Handlers {
	if c == nil {
		c = cache.Noop{}
	}
	h := &Handlers{
		db:     db,
		cal:    catalog.Registry().Calendar(),
		cache:  c,
		cfg:    cfg,
		logger: log,
	}
	h.catalog.Store(catalog)
	return h
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.Health(ctx); err != nil {
		h.log(r.Context()).Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", CodeHealthFailed)
		return
	}

	cacheStatus := "ok"
	if err := h.cache.Ping(ctx); err != nil {
		h.log(r.Context()).Warn("cache ping failed", slog.Any("error", err))
		cacheStatus = "unavailable"
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
		"cache":  cacheStatus,
	})
}

// GetCalendar handles GET /api/v1/calendar?year=
func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := yearQuery(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	WriteSuccess(w, newCalendarView(year))
}

// GetDate handles GET /api/v1/dates/{year}/{month}/{day}. Out-of-range
// parts are normalised the same way the calendar does.
func (h *Handlers) GetDate(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	month, err := intParam(r, "month")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	day, err := intParam(r, "day")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	h.writeDay(w, r, h.cal.DateFromParts(year, month, day))
}

// GetDay handles GET /api/v1/days/{dayIndex}
func (h *Handlers) GetDay(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "dayIndex")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	h.writeDay(w, r, h.cal.DateFromIndex(index))
}

func (h *Handlers) writeDay(w http.ResponseWriter, r *http.Request, d calendar.Date) {
	marked, err := h.markedDates(d.Year)
	if err != nil {
		h.log(r.Context()).Error("failed to resolve events",
			slog.Int("year", d.Year),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to resolve events")
		return
	}

	WriteSuccess(w, newDayView(d, marked))
}

// GetYear handles GET /api/v1/years/{year}
func (h *Handlers) GetYear(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	marked, err := h.markedDates(year)
	if err != nil {
		h.log(r.Context()).Error("failed to resolve events", slog.Int("year", year), slog.Any("error", err))
		WriteInternalError(w, "Failed to resolve events")
		return
	}

	start := h.cal.YearStartWeekday(year)
	view := YearView{
		Year:             year,
		Leap:             calendar.IsLeapYear(year),
		Length:           calendar.YearLength(year),
		FirstWeekday:     start,
		FirstWeekdayName: calendar.DayNames[start],
		Weeks:            h.cal.WeeksInYear(year),
	}
	for m := 1; m <= calendar.MonthsPerYear; m++ {
		view.Months = append(view.Months, newMonthView(h.cal, year, m, marked))
	}

	WriteSuccess(w, view)
}

// GetYearEvents handles GET /api/v1/years/{year}/events
func (h *Handlers) GetYearEvents(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	data, hit, err := h.yearEvents(r.Context(), year)
	if err != nil {
		h.log(r.Context()).Error("failed to resolve events", slog.Int("year", year), slog.Any("error", err))
		WriteInternalError(w, "Failed to resolve events")
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	WriteSuccess(w, json.RawMessage(data))
}

// yearEvents returns the encoded events index of year, from the cache
// when possible. A cache failure only costs the lookup.
func (h *Handlers) yearEvents(ctx context.Context, year int) ([]byte, bool, error) {
	key := cache.YearEventsKey(year)

	data, ok, err := h.cache.Get(ctx, key)
	if err != nil {
		h.log(ctx).Warn("cache read failed", slog.String("key", key), slog.Any("error", err))
	} else if ok {
		return data, true, nil
	}

	marked, err := h.markedDates(year)
	if err != nil {
		return nil, false, err
	}
	data, err = json.Marshal(newYearEventsView(year, marked))
	if err != nil {
		return nil, false, fmt.Errorf("encode year events: %w", err)
	}

	if err := h.cache.Set(ctx, key, data); err != nil {
		h.log(ctx).Warn("cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return data, false, nil
}

// GetMonth handles GET /api/v1/years/{year}/months/{month}
func (h *Handlers) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	month, err := intParam(r, "month")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if month < 1 || month > calendar.MonthsPerYear {
		WriteBadRequest(w, fmt.Sprintf("month must be between 1 and %d", calendar.MonthsPerYear))
		return
	}

	marked, err := h.markedDates(year)
	if err != nil {
		h.log(r.Context()).Error("failed to resolve events", slog.Int("year", year), slog.Any("error", err))
		WriteInternalError(w, "Failed to resolve events")
		return
	}

	WriteSuccess(w, newMonthView(h.cal, year, month, marked))
}

// GetWeek handles GET /api/v1/years/{year}/weeks/{week}
func (h *Handlers) GetWeek(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	week, err := intParam(r, "week")
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if last := h.cal.WeeksInYear(year); week < 1 || week > last {
		WriteBadRequest(w, fmt.Sprintf("week must be between 1 and %d", last))
		return
	}

	days := h.cal.WeekDays(h.cal.DayInWeek(year, week))

	// A week can straddle two years
	byYear := make(map[int]events.MarkedDates, 2)
	view := WeekView{
		Year:  year,
		Week:  week,
		First: days[0].ShortString(),
		Last:  days[len(days)-1].ShortString(),
	}
	for _, d := range days {
		marked, ok := byYear[d.Year]
		if !ok {
			marked, err = h.markedDates(d.Year)
			if err != nil {
				h.log(r.Context()).Error("failed to resolve events", slog.Int("year", d.Year), slog.Any("error", err))
				WriteInternalError(w, "Failed to resolve events")
				return
			}
			byYear[d.Year] = marked
		}
		view.Days = append(view.Days, newDayView(d, marked))
	}

	prev := h.cal.DateRelativeTo(days[0], -1)
	next := h.cal.DateRelativeTo(days[len(days)-1], 1)
	view.Prev = WeekRef{Year: prev.Year, Week: prev.WeekIndex}
	view.Next = WeekRef{Year: next.Year, Week: next.WeekIndex}

	WriteSuccess(w, view)
}

// ListEvents handles GET /api/v1/events
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, map[string]any{
		"keys": h.catalog.Load().Registry().Keys(),
	})
}

// GetEvent handles GET /api/v1/events/{key}?year=
func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	year, err := yearQuery(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	reg := h.catalog.Load().Registry()
	if _, ok := reg.Lookup(key); !ok {
		WriteNotFound(w, fmt.Sprintf("Event %q not found", key))
		return
	}

	occ, err := reg.ResolveKey(key, year)
	if err != nil {
		h.log(r.Context()).Error("failed to resolve event",
			slog.String("key", key),
			slog.Int("year", year),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to resolve event")
		return
	}

	WriteSuccess(w, map[string]any{
		"key":         key,
		"year":        year,
		"occurrences": occ,
	})
}

// ListCatalog handles GET /api/v1/catalog?section=&year=&tag=
func (h *Handlers) ListCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	section := database.Section(q.Get("section"))
	if section != "" && !section.IsValid() {
		WriteBadRequest(w, fmt.Sprintf("Invalid section %q", section))
		return
	}

	filter := database.EntryFilter{Section: section, Tag: q.Get("tag")}
	if q.Get("year") != "" {
		year, err := parseBounded("year", q.Get("year"))
		if err != nil {
			WriteBadRequest(w, err.Error())
			return
		}
		filter.Year = &year
	}

	entries, err := h.db.FindEntries(ctx, filter)
	if err != nil {
		h.log(ctx).Error("failed to list catalog", slog.Any("error", err))
		WriteInternalError(w, "Failed to list catalog")
		return
	}
	if entries == nil {
		entries = []database.CatalogEntry{}
	}

	WriteSuccess(w, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// ListTags handles GET /api/v1/catalog/tags
func (h *Handlers) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.db.ListTags(r.Context())
	if err != nil {
		h.log(r.Context()).Error("failed to list tags", slog.Any("error", err))
		WriteInternalError(w, "Failed to list tags")
		return
	}
	if tags == nil {
		tags = []database.TagCount{}
	}

	WriteSuccess(w, tags)
}

// GetCatalogStats handles GET /api/v1/catalog/stats
func (h *Handlers) GetCatalogStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.Stats(r.Context())
	if err != nil {
		h.log(r.Context()).Error("failed to get catalog stats", slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve statistics")
		return
	}

	WriteSuccess(w, map[string]any{
		"stored": stats,
		"loaded": h.catalog.Load().Counts(),
	})
}

// ReloadCatalog handles POST /api/v1/admin/catalog/reload. The stored
// catalog replaces the one being served and cached payloads are dropped.
func (h *Handlers) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	catalog, err := seed.LoadCatalog(ctx, h.db, h.cal)
	if err != nil {
		h.log(r.Context()).Error("failed to reload catalog", slog.Any("error", err))
		WriteError(w, http.StatusInternalServerError, "Failed to reload catalog", CodeCatalogReload)
		return
	}
	h.catalog.Store(catalog)

	flushed, err := h.cache.Flush(ctx)
	if err != nil {
		h.log(r.Context()).Warn("cache flush failed", slog.Any("error", err))
	}

	h.log(r.Context()).Info("catalog reloaded", slog.Int("cache_keys_flushed", flushed))
	WriteSuccess(w, map[string]any{
		"counts":  catalog.Counts(),
		"flushed": flushed,
	})
}

// FlushCache handles DELETE /api/v1/admin/cache
func (h *Handlers) FlushCache(w http.ResponseWriter, r *http.Request) {
	flushed, err := h.cache.Flush(r.Context())
	if err != nil {
		h.log(r.Context()).Error("failed to flush cache", slog.Any("error", err))
		WriteInternalError(w, "Failed to flush cache")
		return
	}

	WriteSuccess(w, map[string]int{"flushed": flushed})
}

// log returns the request-scoped logger, falling back to the handlers' own.
func (h *Handlers) log(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, h.logger)
}

func (h *Handlers) markedDates(year int) (events.MarkedDates, error) {
	return h.catalog.Load().MarkedDates(year)
}

// intParam parses a path parameter. Years must satisfy
// calendar.YearInDomain and every other number calendar.OffsetInDomain.
func intParam(r *http.Request, name string) (int, error) {
	return parseBounded(name, chi.URLParam(r, name))
}

// yearQuery parses the optional ?year= query, defaulting to DefaultYear.
func yearQuery(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return DefaultYear, nil
	}
	return parseBounded("year", raw)
}

func parseBounded(name, raw string) (int, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}

	if name == "year" {
		if !calendar.YearInDomain(v) {
			return 0, fmt.Errorf("%s %d out of range, must be within ±%d", name, v, int64(calendar.MaxYear))
		}
	} else if !calendar.OffsetInDomain(v) {
		return 0, fmt.Errorf("%s %d out of range, must be within ±%d", name, v, int64(calendar.MaxDayOffset))
	}
	return int(v), nil
}
