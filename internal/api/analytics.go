package api

import (
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
	"github.com/MikeSquared-Agency/leadlens/internal/export"
	"github.com/MikeSquared-Agency/leadlens/internal/kpi"
	"github.com/MikeSquared-Agency/leadlens/internal/report"
	"github.com/MikeSquared-Agency/leadlens/internal/rollup"
)

// filterQuery is the shared date-range and ignore-list query.
type filterQuery struct {
	Start  string `validate:"omitempty,datetime=2006-01-02"`
	End    string `validate:"omitempty,datetime=2006-01-02"`
	Ignore string `validate:"max=4096"`
}

type comparisonQuery struct {
	filterQuery
	Period string `validate:"omitempty,oneof=week month"`
}

type kpiResponse struct {
	KPIs     kpi.Result    `json:"kpis"`
	Insights []kpi.Insight `json:"insights"`
	Finance  kpi.Finance   `json:"finance"`
}

type reportResponse struct {
	Report string `json:"report"`
}

func readFilterQuery(r *http.Request) filterQuery {
	q := r.URL.Query()
	return filterQuery{
		Start:  q.Get("start"),
		End:    q.Get("end"),
		Ignore: q.Get("ignore"),
	}
}

// filter validates q and builds the kpi filter.
func (s *Server) filter(q filterQuery) (kpi.Filter, error) {
	if err := s.validate.Struct(q); err != nil {
		return kpi.Filter{}, err
	}
	f := kpi.Filter{Ignored: kpi.ParseIgnored(q.Ignore)}
	if q.Start == "" && q.End == "" {
		return f, nil
	}
	if q.Start == "" || q.End == "" {
		return kpi.Filter{}, errors.New("start and end must be given together")
	}
	rng, err := kpi.NewDateRange(s.proc.Parser(), q.Start, q.End)
	if err != nil {
		return kpi.Filter{}, err
	}
	f.Range = rng
	return f, nil
}

// selected returns the filtered chats of the current snapshot.
func (s *Server) selected(w http.ResponseWriter, q filterQuery) ([]conversation.Chat, bool) {
	f, err := s.filter(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return kpi.Apply(s.proc.Current().Chats, f, s.proc.Parser()), true
}

func (s *Server) kpis(w http.ResponseWriter, r *http.Request) {
	chats, ok := s.selected(w, readFilterQuery(r))
	if !ok {
		return
	}
	res := s.agg.Aggregate(chats)
	writeJSON(w, http.StatusOK, kpiResponse{
		KPIs:     res,
		Insights: kpi.Insights(res),
		Finance:  kpi.ProjectFinance(res, s.avgTicket(r.Context())),
	})
}

func (s *Server) comparison(w http.ResponseWriter, r *http.Request) {
	q := comparisonQuery{filterQuery: readFilterQuery(r), Period: r.URL.Query().Get("period")}
	if err := s.validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	period, err := rollup.ParsePeriod(q.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	chats, ok := s.selected(w, q.filterQuery)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rollup.Compare(chats, period, s.proc.Parser()))
}

func (s *Server) exportLeads(w http.ResponseWriter, r *http.Request) {
	chats, ok := s.selected(w, readFilterQuery(r))
	if !ok {
		return
	}
	rows := s.agg.Aggregate(chats).Emails

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.Filename)
	if err := s.exporter.WriteCSV(w, rows); err != nil {
		s.logger.Error("failed to write export", "error", err)
	}
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	chats, ok := s.selected(w, readFilterQuery(r))
	if !ok {
		return
	}
	res := s.agg.Aggregate(chats)
	in := report.Input{
		KPIs:      res,
		Insights:  kpi.Insights(res),
		AvgTicket: s.avgTicket(r.Context()),
	}

	text, err := s.reports.Write(r.Context(), s.reportAPIKey(r.Context()), in)
	if err != nil {
		if errors.Is(err, report.ErrMissingAPIKey) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("report generation failed", "error", err)
		writeError(w, http.StatusBadGateway, "report generation failed")
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Report: text})
}
