package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sig-0/tcventanilla/export"
	"github.com/sig-0/tcventanilla/provider/bccr"
	"github.com/sig-0/tcventanilla/storage/types"
)

const (
	defaultLimit = int32(100)
	maxLimit     = int32(500)
)

var (
	errUnableToFetchRates   = errors.New("unable to fetch rates")
	errUnableToFetchSources = errors.New("unable to fetch sources")

	errInvalidLimit  = errors.New("invalid limit")
	errInvalidOffset = errors.New("invalid offset")
	errInvalidType   = errors.New("invalid type")
	errInvalidRange  = errors.New("invalid range (from must not be after to)")
)

func (s *Server) RatesForPair(w http.ResponseWriter, r *http.Request) {
	var (
		baseParam   = chi.URLParam(r, "base")
		targetParam = chi.URLParam(r, "target")

		asOfParam = r.URL.Query().Get("as_of")

		sourceParam = r.URL.Query().Get("source")
		typeParam   = r.URL.Query().Get("type")
	)

	// Parse the base currency
	base, err := parseCurrencySymbol(baseParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the target currency
	target, err := parseCurrencySymbol(targetParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the effective date (defaults to now)
	asOf, err := parseDate(asOfParam, time.Now().UTC())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the source and rate type (optional)
	source, rateType, err := parseSourceAndType(sourceParam, typeParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	q := &types.RateQuery{
		Base:     base,
		Target:   &target,
		Source:   source,
		RateType: rateType,
	}

	results, err := s.storage.RateAsOf(r.Context(), q, asOf)
	if err != nil {
		s.logger.Debug(
			"unable to fetch rates",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	writeJSON(w, http.StatusOK, &RatesResponse{Results: results})
}

func (s *Server) RatesInRange(w http.ResponseWriter, r *http.Request) {
	q, from, to, err := parseRangeQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	// Parse the pagination settings
	limit, offset, err := parseLimitOffset(
		r.URL.Query().Get("limit"),
		r.URL.Query().Get("offset"),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	page, err := s.storage.RatesInRange(r.Context(), q, from, to, limit, offset)
	if err != nil {
		s.logger.Debug(
			"unable to fetch rates",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchRates,
		)

		return
	}

	writeJSON(w, http.StatusOK, page)
}

// RatesCSV serves a date range of stored rates as a CSV download.
// The whole matching range is exported: results are paged out of
// storage until the reported total is exhausted, so a range larger
// than a single page never gets cut short
func (s *Server) RatesCSV(w http.ResponseWriter, r *http.Request) {
	q, from, to, err := parseCSVQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	table := &bccr.Table{
		Headers: []string{"as_of", "base", "target", "rate_type", "source", "rate"},
	}

	var offset int64

	for {
		page, err := s.storage.RatesInRange(r.Context(), q, from, to, maxLimit, offset)
		if err != nil {
			s.logger.Debug(
				"unable to fetch rates",
				"err", err,
			)

			writeError(
				w,
				http.StatusInternalServerError,
				errUnableToFetchRates,
			)

			return
		}

		for _, rate := range page.Results {
			table.Rows = append(table.Rows, []string{
				rate.AsOf.Format("2006-01-02"),
				rate.Base.String(),
				rate.Target.String(),
				rate.RateType.String(),
				rate.Source.String(),
				strconv.FormatFloat(rate.Rate, 'f', -1, 64),
			})
		}

		offset += int64(len(page.Results))

		if len(page.Results) == 0 || offset >= page.Total {
			break
		}
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="rates.csv"`)

	if err := export.Write(w, table); err != nil {
		s.logger.Debug(
			"unable to stream CSV",
			"err", err,
		)
	}
}

func (s *Server) Sources(w http.ResponseWriter, r *http.Request) {
	items, err := s.storage.ListSources(r.Context())
	if err != nil {
		s.logger.Debug(
			"unable to fetch sources",
			"err", err,
		)

		writeError(
			w,
			http.StatusInternalServerError,
			errUnableToFetchSources,
		)

		return
	}

	resp := &SourcesResponse{
		Results: items,
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseRangeQuery parses the pair path params and the from/to window
func parseRangeQuery(r *http.Request) (*types.RateQuery, time.Time, time.Time, error) {
	var zero time.Time

	base, err := parseCurrencySymbol(chi.URLParam(r, "base"))
	if err != nil {
		return nil, zero, zero, err
	}

	target, err := parseCurrencySymbol(chi.URLParam(r, "target"))
	if err != nil {
		return nil, zero, zero, err
	}

	source, rateType, err := parseSourceAndType(
		r.URL.Query().Get("source"),
		r.URL.Query().Get("type"),
	)
	if err != nil {
		return nil, zero, zero, err
	}

	from, to, err := parseWindow(r)
	if err != nil {
		return nil, zero, zero, err
	}

	q := &types.RateQuery{
		Base:     base,
		Target:   &target,
		Source:   source,
		RateType: rateType,
	}

	return q, from, to, nil
}

// parseCSVQuery parses the export query: the pair rides the query
// string, defaulting to USD/CRC
func parseCSVQuery(r *http.Request) (*types.RateQuery, time.Time, time.Time, error) {
	var zero time.Time

	baseParam := r.URL.Query().Get("base")
	if baseParam == "" {
		baseParam = "USD"
	}

	targetParam := r.URL.Query().Get("target")
	if targetParam == "" {
		targetParam = "CRC"
	}

	base, err := parseCurrencySymbol(baseParam)
	if err != nil {
		return nil, zero, zero, err
	}

	target, err := parseCurrencySymbol(targetParam)
	if err != nil {
		return nil, zero, zero, err
	}

	source, rateType, err := parseSourceAndType(
		r.URL.Query().Get("source"),
		r.URL.Query().Get("type"),
	)
	if err != nil {
		return nil, zero, zero, err
	}

	from, to, err := parseWindow(r)
	if err != nil {
		return nil, zero, zero, err
	}

	q := &types.RateQuery{
		Base:     base,
		Target:   &target,
		Source:   source,
		RateType: rateType,
	}

	return q, from, to, nil
}

// parseWindow parses the from/to date window (defaults to the last 30 days)
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()

	from, err := parseDate(r.URL.Query().Get("from"), now.AddDate(0, 0, -30))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	to, err := parseDate(r.URL.Query().Get("to"), now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, errInvalidRange
	}

	return from, to, nil
}

// parseDate accepts RFC3339 timestamps or plain calendar dates
func parseDate(raw string, fallback time.Time) (time.Time, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return fallback, nil
	}

	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}

	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, errors.New("invalid date (must be RFC3339 or YYYY-MM-DD)")
}

func parseLimitOffset(limitRaw, offsetRaw string) (int32, int64, error) {
	limit := defaultLimit

	if v := strings.TrimSpace(limitRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, errInvalidLimit
		}

		limit = int32(n) //nolint:gosec // Fine to clamp
	}

	if limit == 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	var offset int64

	if v := strings.TrimSpace(offsetRaw); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return 0, 0, errInvalidOffset
		}

		offset = n
	}

	return limit, offset, nil
}

func parseSourceAndType(sourceRaw, typeRaw string) (*types.Source, *types.RateType, error) {
	var src *types.Source

	if v := strings.TrimSpace(sourceRaw); v != "" {
		s := types.Source(v)

		src = &s
	}

	var rt *types.RateType

	if v := strings.TrimSpace(typeRaw); v != "" {
		t := types.RateType(strings.ToUpper(v))

		switch t {
		case types.RateTypeBUY, types.RateTypeSELL:
			rt = &t
		default:
			return nil, nil, errInvalidType
		}
	}

	return src, rt, nil
}

func parseCurrencySymbol(v string) (types.Currency, error) {
	s := strings.ToUpper(strings.TrimSpace(v))
	if len(s) != 3 {
		return "", errors.New("invalid currency (must be 3 letters)")
	}

	for i := 0; i < 3; i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return "", errors.New("invalid currency (must be A-Z)")
		}
	}

	return types.Currency(s), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
